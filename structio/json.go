package structio

import (
	"io"

	"github.com/hupe1980/lonelypoint/codec"
	"github.com/hupe1980/lonelypoint/crystal"
)

// JSON stores a crystal.Structure through a codec.
type JSON struct {
	// Codec defaults to codec.Default.
	Codec codec.Codec
}

// Name implements Format.
func (JSON) Name() string { return "json" }

// Extensions implements Format.
func (JSON) Extensions() []string { return []string{".json"} }

func (j JSON) codec() codec.Codec {
	if j.Codec == nil {
		return codec.Default
	}
	return j.Codec
}

// Decode implements Format.
func (j JSON) Decode(r io.Reader) (*crystal.Structure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s crystal.Structure
	if err := j.codec().Unmarshal(data, &s); err != nil {
		return nil, malformed("json", 0, "%v", err)
	}
	return &s, nil
}

// Encode implements Format.
func (j JSON) Encode(w io.Writer, s *crystal.Structure) error {
	data, err := j.codec().Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
