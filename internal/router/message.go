package router

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/go-stomp/stomp/v3/frame"
)

// ContentEncodingHeader marks compressed MESSAGE payloads.
const ContentEncodingHeader = "Content-Encoding"

// Message is a decoded MESSAGE frame handed to subscription handlers and observers.
type Message struct {
	SubscriptionID string
	Destination    string
	Content        string            // UTF-8 text after optional gzip decoding
	Headers        map[string]string // Frame headers; the first occurrence of a key wins
}

// Decode turns a frame into a Message, gunzipping the body when the
// Content-Encoding header says GZIP (any case).
func Decode(f *frame.Frame) (Message, error) {
	headers := headerMap(f)

	content := f.Body
	if strings.EqualFold(headers[ContentEncodingHeader], "GZIP") {
		decompressed, err := decompress(f.Body)
		if err != nil {
			return Message{}, fmt.Errorf("decompress payload: %w", err)
		}
		content = decompressed
	}

	return Message{
		SubscriptionID: headers[frame.Subscription],
		Destination:    headers[frame.Destination],
		Content:        strings.ToValidUTF8(string(content), "\uFFFD"),
		Headers:        headers,
	}, nil
}

func headerMap(f *frame.Frame) map[string]string {
	if f.Header == nil {
		return map[string]string{}
	}
	headers := make(map[string]string, f.Header.Len())
	for i := 0; i < f.Header.Len(); i++ {
		key, value := f.Header.GetAt(i)
		if _, seen := headers[key]; !seen {
			headers[key] = value
		}
	}
	return headers
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
