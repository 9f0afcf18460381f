package router

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/go-stomp/stomp/v3/frame"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func messageFrame(id string, body []byte, headers ...string) *frame.Frame {
	h := append([]string{frame.Subscription, id, frame.Destination, "/user/alice/v1/streaming/ticker"}, headers...)
	f := frame.New(frame.MESSAGE, h...)
	f.Body = body
	return f
}

func TestDecode_Plain(t *testing.T) {
	f := messageFrame("sub-1", []byte(`[{"price":42}]`))

	msg, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Content != `[{"price":42}]` {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.SubscriptionID != "sub-1" {
		t.Errorf("SubscriptionID = %q, want sub-1", msg.SubscriptionID)
	}
	if msg.Headers[frame.Destination] != "/user/alice/v1/streaming/ticker" {
		t.Errorf("destination header = %q", msg.Headers[frame.Destination])
	}
}

func TestDecode_Gzip(t *testing.T) {
	original := `[{"deliveryAreaId":2,"eicCode":"10YFI-1--------U"}]`

	tests := []struct {
		name     string
		encoding string
	}{
		{"upper", "GZIP"},
		{"lower", "gzip"},
		{"mixed", "GZip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := messageFrame("sub-1", gzipBytes(t, original), ContentEncodingHeader, tt.encoding)

			msg, err := Decode(f)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if msg.Content != original {
				t.Errorf("Content = %q, want %q", msg.Content, original)
			}
		})
	}
}

func TestDecode_OtherEncodingPassesThrough(t *testing.T) {
	f := messageFrame("sub-1", []byte("raw"), ContentEncodingHeader, "identity")

	msg, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Content != "raw" {
		t.Errorf("Content = %q, want raw", msg.Content)
	}
}

func TestDecode_CorruptGzip(t *testing.T) {
	f := messageFrame("sub-1", []byte("not gzip"), ContentEncodingHeader, "GZIP")

	if _, err := Decode(f); err == nil {
		t.Error("expected error for corrupt gzip body")
	}
}

func TestDecode_FirstHeaderWins(t *testing.T) {
	f := messageFrame("sub-1", nil, "x-seq", "1", "x-seq", "2")

	msg, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Headers["x-seq"] != "1" {
		t.Errorf("x-seq = %q, want 1", msg.Headers["x-seq"])
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	f := messageFrame("sub-1", []byte{'o', 'k', 0xff})

	msg, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.Content != "ok\uFFFD" {
		t.Errorf("Content = %q", msg.Content)
	}
}
