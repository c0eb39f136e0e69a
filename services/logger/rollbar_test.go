package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	conf := &core.Config{Env: "TEST", TestMode: true, Debug: debug}
	return NewRollbarLogger(log.New(buf, "", 0), conf), buf
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newTestLogger(false)
	err := errors.New("boom")
	extras := map[string]interface{}{"section": "abc"}
	usr := user.User{ID: "u1", Username: "ada", Email: "ada@academia.test"}

	args := l.prepare("failed", []interface{}{err, usr, extras, 42})

	assert.Len(t, args, 4)
	assert.Equal(t, "failed", args[0])
	assert.Equal(t, err, args[1])
	assert.Equal(t, extras, args[2])
	assert.Equal(t, map[string]interface{}{"detail": "42"}, args[3])
}

func TestRollbarLogger_levels(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		log     func(l *RollbarLogger)
		want    string
		wantOut bool
	}{
		{name: "debug hidden", debug: false, log: func(l *RollbarLogger) { l.Debug("dbg") }, want: "dbg"},
		{name: "debug shown", debug: true, log: func(l *RollbarLogger) { l.Debug("dbg") }, want: "DEBUG: dbg", wantOut: true},
		{name: "info", log: func(l *RollbarLogger) { l.Info("hello") }, want: "INFO: hello", wantOut: true},
		{name: "warn", log: func(l *RollbarLogger) { l.Warn("careful") }, want: "WARN: careful", wantOut: true},
		{name: "error", log: func(l *RollbarLogger) { l.Error("oops", errors.New("cause")) }, want: "ERROR: oops", wantOut: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, buf := newTestLogger(tc.debug)
			tc.log(l)
			assert.Equal(t, tc.wantOut, bytes.Contains(buf.Bytes(), []byte(tc.want)))
		})
	}
}
