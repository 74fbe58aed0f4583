package domain

// StreamStderr is the stream channel used for error notifications.
const StreamStderr = "stderr"

// StreamPayload is the structured notification sent to the host's error channel.
type StreamPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Stderr builds a payload for the stderr stream.
func Stderr(text string) StreamPayload {
	return StreamPayload{Name: StreamStderr, Text: text}
}
