package commands

import (
	"fmt"
	"io"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
)

// RunFilter copies the matching events of path to a new log file and
// reports the count on w. The session headers of the copied events are
// kept, so the output names the components that wrote them. No file is
// created when nothing matches.
func RunFilter(path string, filter log.Filter, output string, w io.Writer) error {
	var logger *log.FileLogger
	defer func() {
		if logger != nil {
			logger.Close()
		}
	}()

	session := func(h log.CaptureHeader) error {
		if logger != nil {
			return logger.StartSession(h)
		}
		var err error
		logger, err = log.NewFileLogger(output, h)
		if err != nil {
			return fmt.Errorf("failed to create output logger: %w", err)
		}
		return nil
	}

	count := 0
	err := eachEvent(path, filter, session, func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
