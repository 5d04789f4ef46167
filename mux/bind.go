package mux

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
)

type decoder interface {
	Decode(v any) error
}

// decodeOne decodes a single value from dec and rejects anything after it.
func decodeOne(dec decoder, v any, format string) error {
	if err := dec.Decode(v); err != nil {
		return err
	}

	var extra struct{}
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("mux: unexpected data after %s value", format)
	}

	return nil
}

// BindJSON decodes the body as one JSON value into v. Unknown object fields
// are rejected unless allowUnknownFields is true. An absent body returns
// io.EOF.
func (r *Request) BindJSON(v any, allowUnknownFields ...bool) error {
	if r.Body == nil {
		return io.EOF
	}

	dec := json.NewDecoder(r.Body)
	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	return decodeOne(dec, v, "JSON")
}

// BindXML decodes the body as one XML element into v.
func (r *Request) BindXML(v any) error {
	if r.Body == nil {
		return io.EOF
	}

	return decodeOne(xml.NewDecoder(r.Body), v, "XML")
}
