package queue

import "encoding/json"

// EventBatchCompleted names the event carried by BatchCompleted.
const EventBatchCompleted = "batch.completed"

// BatchCompleted is published once a batch job has attempted every document.
type BatchCompleted struct {
	JobID       string `json:"jobId"`
	TargetID    string `json:"targetId"`
	Total       int    `json:"total"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	CompletedAt string `json:"completedAt"`
	RequestID   string `json:"requestId,omitempty"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg BatchCompleted) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a BatchCompleted.
func DecodeMessage(payload []byte) (BatchCompleted, error) {
	var msg BatchCompleted
	if err := json.Unmarshal(payload, &msg); err != nil {
		return BatchCompleted{}, err
	}
	return msg, nil
}
