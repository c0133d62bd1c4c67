package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ProductionEvent is one decoded machine message. Immutable after decode;
// only its outcome is persisted.
type ProductionEvent struct {
	MachineID  int
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
	readings   map[string]any
}

var trailingDigits = regexp.MustCompile(`\d+$`)

// MachineIDFromTopic extracts the machine id from the topic's trailing
// integer, e.g. "malhotra/Print_AutoCoiler3" -> 3.
func MachineIDFromTopic(topic string) (int, error) {
	match := trailingDigits.FindString(topic)
	if match == "" {
		return 0, fmt.Errorf("no machine id in topic %q", topic)
	}
	id, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("parsing machine id from topic %q: %w", topic, err)
	}
	return id, nil
}

// DecodeEvent parses the wire payload: a JSON object with a nested "d" map
// of sensor names to single-element arrays. The first element of each array
// is the reading.
func DecodeEvent(topic string, payload []byte, receivedAt time.Time) (*ProductionEvent, error) {
	machineID, err := MachineIDFromTopic(topic)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data map[string][]any `json:"d"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding payload on %q: %w", topic, err)
	}

	readings := make(map[string]any, len(envelope.Data))
	for name, values := range envelope.Data {
		if len(values) == 0 {
			continue
		}
		readings[name] = values[0]
	}

	return &ProductionEvent{
		MachineID:  machineID,
		Topic:      topic,
		Payload:    payload,
		ReceivedAt: receivedAt,
		readings:   readings,
	}, nil
}

// Flag returns a boolean sensor reading, false when absent or non-boolean.
func (e *ProductionEvent) Flag(name string) bool {
	value, ok := e.readings[name].(bool)
	return ok && value
}

// Number returns a numeric sensor reading, 0 when absent or non-numeric.
// json.Unmarshal into any always yields float64 for JSON numbers.
func (e *ProductionEvent) Number(name string) float64 {
	value, ok := e.readings[name].(float64)
	if !ok {
		return 0
	}
	return value
}

// Flags collects every boolean reading, keyed by sensor name.
func (e *ProductionEvent) Flags() map[string]bool {
	flags := make(map[string]bool, len(e.readings))
	for name, value := range e.readings {
		if boolean, ok := value.(bool); ok {
			flags[name] = boolean
		}
	}
	return flags
}
