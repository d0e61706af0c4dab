package manager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Input is the dataset handed to Open. It is one of Array, EncodedText or Invalid.
type Input interface {
	isInput()
}

// Array is an already decoded list of records.
type Array []Record

// EncodedText is a JSON document expected to hold an array of records.
type EncodedText string

// Invalid is anything else the caller had at hand.
type Invalid struct {
	Value any
}

func (Array) isInput()       {}
func (EncodedText) isInput() {}
func (Invalid) isInput()     {}

// InputFrom resolves an untyped value into an Input.
func InputFrom(v any) Input {
	switch val := v.(type) {
	case Input:
		return val
	case []Record:
		return Array(val)
	case string:
		return EncodedText(val)
	case []byte:
		return EncodedText(val)
	default:
		return Invalid{Value: v}
	}
}

// Decode turns an Input into records. The returned slice is never nil; on error
// it is empty and the error is a *DecodeError.
func Decode(in Input) ([]Record, error) {
	switch val := in.(type) {
	case Array:
		out := make([]Record, len(val))
		copy(out, val)
		return out, nil
	case EncodedText:
		return decodeText(string(val))
	case Invalid:
		if val.Value == nil {
			return []Record{}, &DecodeError{Kind: DecodeEmpty}
		}
		return []Record{}, &DecodeError{Kind: DecodeShape, Err: fmt.Errorf("unsupported dataset %T", val.Value)}
	default:
		return []Record{}, &DecodeError{Kind: DecodeEmpty}
	}
}

func decodeText(text string) ([]Record, error) {
	raw := bytes.TrimSpace([]byte(text))
	if len(raw) == 0 {
		return []Record{}, &DecodeError{Kind: DecodeEmpty}
	}
	if !json.Valid(raw) {
		var v any
		err := json.Unmarshal(raw, &v)
		return []Record{}, &DecodeError{Kind: DecodeSyntax, Err: err}
	}
	if raw[0] != '[' {
		return []Record{}, &DecodeError{Kind: DecodeShape, Err: errors.New("dataset is not an array")}
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return []Record{}, &DecodeError{Kind: DecodeShape, Err: err}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
