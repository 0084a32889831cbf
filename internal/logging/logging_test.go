package logging

import "testing"

func TestInitLogger(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	formats := []Format{FormatJSON, FormatText}
	for _, level := range levels {
		for _, format := range formats {
			InitLogger(level, format)
			if GetLogger() == nil {
				t.Errorf("GetLogger() = nil after InitLogger(%d, %d)", level, format)
			}
		}
	}
}

func TestHelpersDoNotPanic(t *testing.T) {
	InitLogger(LevelDebug, FormatText)
	Debug("debug", "key", "value")
	Info("info", "key", "value")
	Warn("warn", "key", "value")
	Error("error", "key", "value")
	Conversion("3 m/s", "inch/minute", 7086.614)
	DefinitionsLoaded("default_en.txt", "units", 90)
}
