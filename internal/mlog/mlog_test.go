package mlog

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.WarnLevel, false},
		{"TRACE", logrus.TraceLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"Info", logrus.InfoLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"WARNING", logrus.WarnLevel, false},
		{"ERROR", logrus.ErrorLevel, false},
		{"bogus", logrus.WarnLevel, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
