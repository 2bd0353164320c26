package store

import (
	"encoding/json"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/gudgeon/internal/parse"
	"github.com/dekarrin/gudgeon/internal/types"
)

// tablePayload is the one thing a compiled_tables row's table_data column
// holds: exactly one of an LL(1) or LR snapshot, discriminated by Kind.
type tablePayload struct {
	Kind types.ParserType
	LL1  *parse.LL1Snapshot
	LR   *parse.LRSnapshot
}

// MarshalBinary/UnmarshalBinary give tablePayload the encoding.
// BinaryMarshaler/BinaryUnmarshaler pair rezi.EncBinary/DecBinary require;
// the snapshot types are plain maps of strings and small structs, so JSON
// is a perfectly serviceable wire body for them, and no struct-to-bytes
// library appears anywhere else in this corpus for rezi to lean on.
func (p *tablePayload) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *tablePayload) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

func encodePayload(p tablePayload) ([]byte, error) {
	return rezi.EncBinary(&p), nil
}

func decodePayload(raw []byte) (tablePayload, error) {
	var p tablePayload
	if err := rezi.DecBinary(raw, &p); err != nil {
		return tablePayload{}, err
	}
	return p, nil
}
