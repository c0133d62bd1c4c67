package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcpl-automation/coilprint-backend/internal/label"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/enums"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
	"github.com/mcpl-automation/coilprint-backend/pkg/metrics"
)

// lengthReading is the sensor carrying the measured coil length in meters.
const lengthReading = "pre_coil_length"

// Per-message processing states. Once a message reaches stateChecked with an
// active assignment, it must reach stateAudited.
type state string

const (
	stateReceived  state = "RECEIVED"
	stateRawLogged state = "RAW_LOGGED"
	stateChecked   state = "ASSIGNMENT_CHECKED"
	stateDropped   state = "DROPPED"
	stateAllocated state = "SERIAL_ALLOCATED"
	stateComposed  state = "COMPOSED"
	statePrinted   state = "PRINTED"
	stateAudited   state = "AUDITED"
)

type assignmentResolver interface {
	Resolve(ctx context.Context, machineID int) (*models.MachineAssignment, error)
}

type serialAllocator interface {
	Next(ctx context.Context, day time.Time) (int, error)
}

type documentSender interface {
	Send(ctx context.Context, document []byte) (bool, string)
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.PrintLog) error
}

type rawLogger interface {
	Append(ctx context.Context, topic string, payload []byte)
}

// Service drives each inbound machine event through assignment check,
// serial allocation, label composition, print delivery, and audit.
type Service struct {
	logg       *logger.Logger
	resolver   assignmentResolver
	allocator  serialAllocator
	compositor *label.Compositor
	sender     documentSender
	audit      auditWriter
	rawLog     rawLogger
	metrics    *metrics.PipelineMetrics

	shutdownGrace time.Duration

	mu       sync.Mutex
	inFlight sync.WaitGroup
	draining bool
}

// NewService wires the pipeline components together.
func NewService(
	logg *logger.Logger,
	resolver assignmentResolver,
	allocator serialAllocator,
	compositor *label.Compositor,
	sender documentSender,
	audit auditWriter,
	rawLog rawLogger,
	pipelineMetrics *metrics.PipelineMetrics,
	shutdownGrace time.Duration,
) (*Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("assignment resolver required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("serial allocator required")
	}
	if compositor == nil {
		return nil, fmt.Errorf("label compositor required")
	}
	if sender == nil {
		return nil, fmt.Errorf("document sender required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit writer required")
	}
	if rawLog == nil {
		return nil, fmt.Errorf("raw logger required")
	}
	if shutdownGrace <= 0 {
		shutdownGrace = 30 * time.Second
	}
	return &Service{
		logg:          logg,
		resolver:      resolver,
		allocator:     allocator,
		compositor:    compositor,
		sender:        sender,
		audit:         audit,
		rawLog:        rawLog,
		metrics:       pipelineMetrics,
		shutdownGrace: shutdownGrace,
	}, nil
}

// Handle is the subscription callback. It only registers the message and
// hands off to a per-message goroutine; the listener never blocks on
// business logic.
func (s *Service) Handle(topic string, payload []byte) {
	receivedAt := time.Now().UTC()

	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		s.logg.Warn(s.logg.WithTopic(context.Background(), topic), fmt.Sprintf("message discarded during shutdown at state %s", stateReceived))
		return
	}
	s.inFlight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inFlight.Done()
		s.process(context.Background(), topic, payload, receivedAt)
	}()
}

// Shutdown stops accepting messages and waits for in-flight events to reach
// a terminal state, up to the grace period.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	grace := s.shutdownGrace
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < grace {
			grace = remaining
		}
	}

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return fmt.Errorf("pipeline drain timed out after %s", grace)
	}
}

// process runs one message through the full state machine. A single event's
// failure never propagates past this function.
func (s *Service) process(ctx context.Context, topic string, payload []byte, receivedAt time.Time) {
	ctx = s.logg.WithTopic(ctx, topic)

	// Raw logging is diagnostic, not authoritative; failures are swallowed
	// inside Append and the pipeline continues.
	s.rawLog.Append(ctx, topic, payload)

	event, err := DecodeEvent(topic, payload, receivedAt)
	if err != nil {
		s.logg.Error(ctx, fmt.Sprintf("event abandoned at state %s: undecodable message", stateRawLogged), err)
		return
	}
	ctx = s.logg.WithMachineID(ctx, event.MachineID)
	s.metrics.IncReceived(event.MachineID)

	assignment, err := s.resolver.Resolve(ctx, event.MachineID)
	if err != nil {
		// Cannot determine intent safely; no order context to attribute a
		// FAILED row to.
		s.logg.Error(ctx, fmt.Sprintf("event abandoned at state %s: assignment lookup failed", stateRawLogged), err)
		return
	}

	if assignment == nil {
		s.metrics.IncDropped(event.MachineID)
		s.logg.Warn(ctx, fmt.Sprintf("no active assignment, print trigger ignored at state %s", stateDropped))
		return
	}

	// From here on the event must be audited no matter what fails.
	s.produce(ctx, event, assignment, stateChecked)
}

// produce runs the production path and guarantees exactly one audit row.
func (s *Service) produce(ctx context.Context, event *ProductionEvent, assignment *models.MachineAssignment, current state) {
	order := assignment.WorkOrder
	now := time.Now()

	var failure string
	var serial string

	seq, err := s.allocator.Next(ctx, now)
	if err != nil {
		// No serial number means no label; the event is still audited.
		failure = fmt.Sprintf("serial allocation failed: %v", err)
		serial = unallocatedSerial(event.MachineID)
	} else {
		serial = label.SerialNumber(now, event.MachineID, seq)
	}
	ctx = s.logg.WithSerial(ctx, serial)
	if failure == "" {
		s.logg.Info(ctx, fmt.Sprintf("serial assigned, state %s", stateAllocated))
	}

	record := s.compositor.Compose(order, serial, event.MachineID, event.Number(lengthReading), event.Flags(), now)

	// Without a real serial there is no label: nothing is rendered, nothing
	// is sent, and the audit row keeps a nil document so a reprint cannot
	// push a fallback serial to the printer.
	if failure == "" {
		record = s.compositor.Render(record)
		current = stateComposed
		start := time.Now()
		ok, detail := s.sender.Send(ctx, []byte(record.Document))
		s.metrics.ObservePrintDuration(event.MachineID, time.Since(start))
		if ok {
			current = statePrinted
		} else {
			failure = fmt.Sprintf("print transport failed: %s", detail)
		}
	}

	entry := &models.PrintLog{
		SerialNumber: record.SerialNumber,
		MachineID:    event.MachineID,
		WorkOrderNo:  record.WorkOrderNo,
		ProductID:    record.ProductID,
		ActualLength: record.ActualLength,
		DefectType:   record.DefectType,
		EventPayload: string(event.Payload),
		Status:       enums.PrintStatusSuccess,
	}
	if document := record.Document; document != "" {
		entry.ZPLContent = &document
	}
	if failure != "" {
		entry.Status = enums.PrintStatusFailed
		entry.ErrorMessage = &failure
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		// Durability boundary: nothing further can be done for this event
		// in-process.
		s.logg.Error(ctx, fmt.Sprintf("audit write failed at state %s", current), err)
		s.metrics.IncFailed(event.MachineID)
		return
	}

	if entry.Status == enums.PrintStatusSuccess {
		s.metrics.IncPrinted(event.MachineID)
		s.logg.Info(ctx, fmt.Sprintf("coil label printed, state %s", stateAudited))
	} else {
		s.metrics.IncFailed(event.MachineID)
		s.logg.Warn(ctx, "print failed, audited as FAILED: "+failure)
	}
}

// unallocatedSerial keeps the audit row's serial unique when no sequence
// number could be issued.
func unallocatedSerial(machineID int) string {
	return fmt.Sprintf("UNALLOCATED-%d-%s", machineID, uuid.NewString()[:8])
}
