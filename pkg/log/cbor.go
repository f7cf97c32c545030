package log

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// captureHeaderTag is the CBOR tag ("RLOG") wrapping a session header in a
// capture stream. Events are untagged maps.
const captureHeaderTag = 0x524C4F47

var (
	logEncMode cbor.EncMode
	logDecMode cbor.DecMode
)

func init() {
	tags := cbor.NewTagSet()
	err := tags.Add(
		cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
		reflect.TypeOf(CaptureHeader{}),
		captureHeaderTag,
	)
	if err != nil {
		panic(fmt.Sprintf("registering capture header tag: %v", err))
	}

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	if logEncMode, err = encOpts.EncModeWithTags(tags); err != nil {
		panic(fmt.Sprintf("creating capture encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	if logDecMode, err = decOpts.DecModeWithTags(tags); err != nil {
		panic(fmt.Sprintf("creating capture decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR bytes using integer keys for compactness.
func EncodeEvent(event Event) ([]byte, error) {
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes CBOR bytes into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// record is one item of a capture stream: a session header or an event.
type record struct {
	header *CaptureHeader
	event  Event
}

// readRecord decodes the next item of a capture stream. It returns io.EOF
// at a clean end of stream.
func readRecord(d *cbor.Decoder) (record, error) {
	var raw cbor.RawMessage
	if err := d.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return record{}, io.EOF
		}
		return record{}, err
	}

	if isHeaderTag(raw) {
		var h CaptureHeader
		if err := logDecMode.Unmarshal(raw, &h); err != nil {
			return record{}, fmt.Errorf("%w: session header: %w", ErrNotCapture, err)
		}
		return record{header: &h}, nil
	}

	var ev Event
	if err := logDecMode.Unmarshal(raw, &ev); err != nil {
		return record{}, err
	}
	return record{event: ev}, nil
}

// isHeaderTag reports whether raw is a CBOR tag item carrying a session
// header.
func isHeaderTag(raw cbor.RawMessage) bool {
	const majorTypeTag = 6
	if len(raw) == 0 || raw[0]>>5 != majorTypeTag {
		return false
	}
	var tag cbor.RawTag
	if err := tag.UnmarshalCBOR(raw); err != nil {
		return false
	}
	return tag.Number == captureHeaderTag
}
