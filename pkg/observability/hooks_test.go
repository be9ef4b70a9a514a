package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestRegistryDefaults(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should default to NoopStoreHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}
}

func TestRegistrySetAndReset(t *testing.T) {
	t.Cleanup(Reset)
	hooks := NewLogHooks(log.New(&bytes.Buffer{}))

	SetPipelineHooks(hooks)
	SetStoreHooks(hooks)
	SetHTTPHooks(hooks)
	if Pipeline() != PipelineHooks(hooks) || Store() != StoreHooks(hooks) || HTTP() != HTTPHooks(hooks) {
		t.Fatal("registered hooks not returned")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(hooks) {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetStoreHooks(NoopStoreHooks{})
				return
			}
			Store().OnRecordSave(context.Background(), "offsets", 10)
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnInputDropped(ctx, "edge", "unknown target \"ghost\"")
	h.OnLayoutStart(ctx, 5, 6)
	h.OnLayoutComplete(ctx, 3*time.Millisecond, nil)
	h.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("converter missing"))
	h.OnRecordLoad(ctx, "offsets", false)
	h.OnRecordWriteError(ctx, "sizes", errors.New("disk full"))
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"hooks: input dropped",
		"layout complete",
		"render failed",
		"converter missing",
		"record load",
		"record write failed",
		"status=200",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
