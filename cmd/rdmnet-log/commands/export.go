package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
)

// RunExport writes the matching events of path as JSON lines or CSV to
// output, or to stdout when output is empty.
func RunExport(path string, filter log.Filter, format, output string) error {
	var write func(io.Writer) error
	switch format {
	case "jsonl":
		write = func(w io.Writer) error { return exportJSONL(path, filter, w) }
	case "csv":
		write = func(w io.Writer) error { return exportCSV(path, filter, w) }
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	return write(f)
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return eachEvent(path, filter, nil, func(event log.Event) error {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

var csvHeader = []string{
	"timestamp", "connection_id", "direction", "layer", "category",
	"scope", "peer_uid", "type", "source_uid", "dest_uid", "seqnum", "pid",
}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := eachEvent(path, filter, nil, func(event log.Event) error {
		var src, dst, seq, pid string
		if m := event.Message; m != nil {
			src, dst = m.SourceUID, m.DestUID
			if m.Seqnum != 0 {
				seq = strconv.FormatUint(uint64(m.Seqnum), 10)
			}
			if m.ParamID != nil {
				pid = rdm.PIDName(*m.ParamID)
			}
		}
		row := []string{
			event.Timestamp.UTC().Format(timestampFormat),
			event.ConnectionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.Scope,
			event.PeerUID,
			eventLabel(event),
			src, dst, seq, pid,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
	cw.Flush()
	if err != nil {
		return err
	}
	return cw.Error()
}
