package adapter

import (
	"bytes"
	"testing"

	"biokb/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func sinkWithBuffer() (*LogSink, *bytes.Buffer) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	return NewLogSink(&zl), &buf
}

func TestLogSink_IndentsNestedBlocks(t *testing.T) {
	sink, buf := sinkWithBuffer()

	sink.Log("top")
	sink.LogPush("downloading go")
	sink.Log("fetching go-basic.obo")
	sink.LogPush("parsing")
	sink.Logf("staged %d terms", 7)
	sink.LogPop("parsed")
	sink.LogPop("done")
	sink.Log("after")

	out := buf.String()
	testkit.MustContain(t, out, `"top"`)
	testkit.MustContain(t, out, `"downloading go"`)
	testkit.MustContain(t, out, `"  fetching go-basic.obo"`)
	testkit.MustContain(t, out, `"  parsing"`)
	testkit.MustContain(t, out, `"    staged 7 terms"`)
	testkit.MustContain(t, out, `"  parsed"`)
	testkit.MustContain(t, out, `"done"`)
	testkit.MustContain(t, out, `"after"`)
}

func TestLogSink_PopBelowZeroStaysFlat(t *testing.T) {
	sink, buf := sinkWithBuffer()

	sink.LogPop("stray pop")
	sink.Log("still flat")

	out := buf.String()
	testkit.MustContain(t, out, `"stray pop"`)
	testkit.MustContain(t, out, `"still flat"`)
}

func TestLogSink_NilLoggerDefaultsToRoot(t *testing.T) {
	testkit.MustNotPanic(t, func() {
		s := NewLogSink(nil)
		s.Log("ok")
	})
}
