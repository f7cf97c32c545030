package rdm

import (
	"bytes"
	"errors"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{
			name: "get no data",
			cmd: Command{
				Source:         UID{Manufacturer: 0x6574, Device: 1},
				Dest:           UID{Manufacturer: 1, Device: 2},
				TransactionNum: 7,
				PortID:         1,
				CommandClass:   CommandClassGet,
				ParamID:        PIDDeviceInfo,
			},
		},
		{
			name: "set with data",
			cmd: Command{
				Source:         UID{Manufacturer: 0x6574, Device: 1},
				Dest:           UID{Manufacturer: 0x1234, Device: 0xdeadbeef},
				TransactionNum: 255,
				Subdevice:      3,
				CommandClass:   CommandClassSet,
				ParamID:        PIDDMXStartAddress,
				Data:           []byte{0x00, 0x2a},
			},
		},
		{
			name: "max data",
			cmd: Command{
				Source:       UID{Manufacturer: 2, Device: 3},
				Dest:         BroadcastUID,
				CommandClass: CommandClassSet,
				ParamID:      PIDDeviceLabel,
				Data:         bytes.Repeat([]byte{0xab}, MaxDataLen),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeCommand(&tt.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand failed: %v", err)
			}
			if len(buf) != tt.cmd.Size() {
				t.Errorf("len = %d, want %d", len(buf), tt.cmd.Size())
			}
			if !IsCommandBuffer(buf) {
				t.Error("IsCommandBuffer = false")
			}

			got, err := UnpackCommand(buf)
			if err != nil {
				t.Fatalf("UnpackCommand failed: %v", err)
			}
			if got.Source != tt.cmd.Source || got.Dest != tt.cmd.Dest {
				t.Errorf("uids = %s/%s, want %s/%s", got.Source, got.Dest, tt.cmd.Source, tt.cmd.Dest)
			}
			if got.TransactionNum != tt.cmd.TransactionNum || got.PortID != tt.cmd.PortID {
				t.Errorf("tn/port = %d/%d, want %d/%d", got.TransactionNum, got.PortID, tt.cmd.TransactionNum, tt.cmd.PortID)
			}
			if got.Subdevice != tt.cmd.Subdevice || got.CommandClass != tt.cmd.CommandClass || got.ParamID != tt.cmd.ParamID {
				t.Errorf("header mismatch: got %+v", got)
			}
			if !bytes.Equal(got.Data, tt.cmd.Data) {
				t.Errorf("data = %x, want %x", got.Data, tt.cmd.Data)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{
		Source:         UID{Manufacturer: 1, Device: 2},
		Dest:           UID{Manufacturer: 0x6574, Device: 1},
		TransactionNum: 9,
		ResponseType:   ResponseTypeAckOverflow,
		MessageCount:   4,
		Subdevice:      0,
		CommandClass:   CommandClassGetResponse,
		ParamID:        PIDSupportedParameters,
		Data:           []byte{0x00, 0x60, 0x00, 0x80},
	}

	buf, err := EncodeResponse(&resp)
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}
	if IsCommandBuffer(buf) {
		t.Error("IsCommandBuffer = true for a response")
	}

	got, err := UnpackResponse(buf)
	if err != nil {
		t.Fatalf("UnpackResponse failed: %v", err)
	}
	if got.Source != resp.Source || got.Dest != resp.Dest || got.TransactionNum != resp.TransactionNum {
		t.Errorf("addressing mismatch: %+v", got)
	}
	if got.ResponseType != resp.ResponseType || got.MessageCount != resp.MessageCount {
		t.Errorf("type/count = %s/%d, want %s/%d", got.ResponseType, got.MessageCount, resp.ResponseType, resp.MessageCount)
	}
	if got.CommandClass != resp.CommandClass || got.ParamID != resp.ParamID {
		t.Errorf("class/pid = %s/%#x", got.CommandClass, got.ParamID)
	}
	if !bytes.Equal(got.Data, resp.Data) {
		t.Errorf("data = %x, want %x", got.Data, resp.Data)
	}
}

func TestPackDeviceInfoGetLayout(t *testing.T) {
	cmd := Command{
		Source:         UID{Manufacturer: 0x6574, Device: 1},
		Dest:           UID{Manufacturer: 1, Device: 2},
		TransactionNum: 0,
		PortID:         1,
		CommandClass:   CommandClassGet,
		ParamID:        0x0060,
	}
	buf, err := EncodeCommand(&cmd)
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}

	want := []byte{
		0xCC, 0xF1, 24,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x02,
		0x65, 0x74, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x01, 0x00,
		0x00, 0x00,
		0x20,
		0x00, 0x60,
		0x00,
	}
	if !bytes.Equal(buf[:HeaderSize], want) {
		t.Errorf("header = % x\nwant     % x", buf[:HeaderSize], want)
	}
	sum := Checksum(want)
	if buf[24] != byte(sum>>8) || buf[25] != byte(sum) {
		t.Errorf("checksum = %02x%02x, want %04x", buf[24], buf[25], sum)
	}

	got, err := UnpackCommand(buf)
	if err != nil {
		t.Fatalf("UnpackCommand failed: %v", err)
	}
	if got.Source != cmd.Source || got.Dest != cmd.Dest || got.ParamID != 0x0060 || got.CommandClass != CommandClassGet {
		t.Errorf("got %+v", got)
	}
}

func TestValidateMessageDetectsSingleByteCorruption(t *testing.T) {
	cmd := Command{
		Source:         UID{Manufacturer: 0x6574, Device: 1},
		Dest:           UID{Manufacturer: 1, Device: 2},
		TransactionNum: 42,
		CommandClass:   CommandClassSet,
		ParamID:        PIDDeviceLabel,
		Data:           []byte("stage left"),
	}
	buf, err := EncodeCommand(&cmd)
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}
	if err := ValidateMessage(buf); err != nil {
		t.Fatalf("ValidateMessage on clean buffer: %v", err)
	}

	for i := range buf {
		for _, delta := range []byte{0x01, 0x80, 0xff} {
			corrupt := append([]byte(nil), buf...)
			corrupt[i] ^= delta
			if err := ValidateMessage(corrupt); err == nil {
				t.Fatalf("byte %d xor %#x not detected", i, delta)
			}
		}
	}
}

func TestValidateMessageErrors(t *testing.T) {
	good, err := EncodeCommand(&Command{CommandClass: CommandClassGet, ParamID: PIDDeviceInfo})
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"too short", good[:MinMessageSize-1], ErrTooShort},
		{"too long", make([]byte, MaxMessageSize+1), ErrTooLong},
		{"truncated checksum", append(append([]byte(nil), good...), 0), ErrLengthMismatch},
		{"bad start code", func() []byte {
			b := append([]byte(nil), good...)
			b[0] = 0xCD
			return b
		}(), ErrBadStartCode},
		{"bad checksum", func() []byte {
			b := append([]byte(nil), good...)
			b[len(b)-1]++
			return b
		}(), ErrChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateMessage(tt.buf); !errors.Is(err, tt.want) {
				t.Errorf("ValidateMessage = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPackErrors(t *testing.T) {
	t.Run("data too long", func(t *testing.T) {
		cmd := Command{CommandClass: CommandClassSet, Data: make([]byte, MaxDataLen+1)}
		if _, err := EncodeCommand(&cmd); !errors.Is(err, ErrDataTooLong) {
			t.Errorf("err = %v, want ErrDataTooLong", err)
		}
	})

	t.Run("buffer too small", func(t *testing.T) {
		cmd := Command{CommandClass: CommandClassGet, Data: []byte{1, 2, 3}}
		buf := make([]byte, cmd.Size()-1)
		n, err := PackCommand(buf, &cmd)
		if !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("err = %v, want ErrBufferTooSmall", err)
		}
		if n != 0 {
			t.Errorf("n = %d, want 0", n)
		}
		for i, b := range buf {
			if b != 0 {
				t.Fatalf("buffer modified at %d", i)
			}
		}
	})

	t.Run("response class on command", func(t *testing.T) {
		cmd := Command{CommandClass: CommandClassGetResponse}
		if _, err := EncodeCommand(&cmd); !errors.Is(err, ErrInvalidCommandClass) {
			t.Errorf("err = %v, want ErrInvalidCommandClass", err)
		}
	})

	t.Run("unpack response as command", func(t *testing.T) {
		buf, err := EncodeResponse(&Response{CommandClass: CommandClassGetResponse})
		if err != nil {
			t.Fatalf("EncodeResponse failed: %v", err)
		}
		if _, err := UnpackCommand(buf); !errors.Is(err, ErrNotCommand) {
			t.Errorf("err = %v, want ErrNotCommand", err)
		}
	})
}

func TestNackResponse(t *testing.T) {
	cmd := &Command{
		Source:         UID{Manufacturer: 0x6574, Device: 1},
		Dest:           UID{Manufacturer: 1, Device: 2},
		TransactionNum: 3,
		Subdevice:      1,
		CommandClass:   CommandClassSet,
		ParamID:        PIDIdentifyDevice,
	}

	resp := NewNackResponse(cmd, NackWriteProtect)
	if resp.Source != cmd.Dest || resp.Dest != cmd.Source {
		t.Errorf("addresses not swapped: %s -> %s", resp.Source, resp.Dest)
	}
	if resp.CommandClass != CommandClassSetResponse {
		t.Errorf("CommandClass = %s", resp.CommandClass)
	}
	reason, err := resp.NackReason()
	if err != nil {
		t.Fatalf("NackReason failed: %v", err)
	}
	if reason != NackWriteProtect {
		t.Errorf("reason = %s, want %s", reason, NackWriteProtect)
	}

	ack := NewAckResponse(cmd, nil)
	if _, err := ack.NackReason(); !errors.Is(err, ErrNotNack) {
		t.Errorf("NackReason on ACK = %v, want ErrNotNack", err)
	}
}
