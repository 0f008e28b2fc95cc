// Package logger provides the TextFormatter used with
// github.com/sirupsen/logrus by the stattank binaries.
package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimestampFormat = time.RFC3339

// TextFormatter renders entries as "<ts> [LEVEL] message key=value ...".
type TextFormatter struct {
	// Disable timestamp logging. useful when output is redirected to a
	// logging system that already adds timestamps
	DisableTimestamp bool

	// Timestamp format to use for display when a full timestamp is printed
	TimestampFormat string

	// The name of the module (api, tank, loadgen, ...), printed before the
	// log message. Doesn't print if empty.
	ModuleName string
}

// Format renders a single log entry.
// It is meant to be called from github.com/sirupsen/logrus.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format(timestampFormat))
		b.WriteByte(' ')
	}

	b.WriteByte('[')
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteByte(']')
	b.WriteByte(' ')

	if f.ModuleName != "" {
		b.WriteByte('[')
		b.WriteString(f.ModuleName)
		b.WriteByte(']')
		b.WriteByte(' ')
	}

	// sorted fields for a consistent output
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if entry.Message != "" {
		b.WriteString(entry.Message)
		if len(keys) > 0 {
			b.WriteByte(' ')
		}
	}

	for i, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		appendValue(b, entry.Data[key])
		if i != len(keys)-1 {
			b.WriteByte(' ')
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func appendValue(b *bytes.Buffer, value interface{}) {
	switch value := value.(type) {
	case string:
		if needsQuoting(value) {
			fmt.Fprintf(b, "%q", value)
		} else {
			b.WriteString(value)
		}
	case error:
		errmsg := value.Error()
		if needsQuoting(errmsg) {
			fmt.Fprintf(b, "%q", errmsg)
		} else {
			b.WriteString(errmsg)
		}
	default:
		fmt.Fprint(b, value)
	}
}

func needsQuoting(text string) bool {
	for _, ch := range text {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.') {
			return true
		}
	}
	return false
}
