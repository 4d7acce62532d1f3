package timeline

import (
	"encoding/json"
	"fmt"
)

// EncodeSnapshot serializes the feed for a suspend/resume round trip. The
// format is private to this build.
func EncodeSnapshot(f *Feed) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode feed snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshot(data []byte) (*Feed, error) {
	f := NewFeed()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode feed snapshot: %w", err)
	}
	if f.Items == nil {
		f.Items = make([]Post, 0, RefreshPageSize)
	}
	return f, nil
}
