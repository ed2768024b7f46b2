package backstage

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kotuku-run/parasol/core/memory"
	"github.com/kotuku-run/parasol/core/module"
	"github.com/kotuku-run/parasol/core/object"
)

func newTestServer(t *testing.T) (*Server, *object.Registry, *module.Registry) {
	t.Helper()
	objects := object.NewRegistry(memory.NewLedger())
	class := object.NewClass("Widget", 1, func() any { return struct{}{} })
	objects.RegisterClass(class)
	_, err := objects.NewObject("Widget", 0)
	require.NoError(t, err)

	modules := module.NewRegistry()
	modules.Register(module.Entry{ID: "core"})

	s := New(Config{Objects: objects, Modules: modules})
	return s, objects, modules
}

func TestHandleObjects(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/objects", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var summaries []object.ObjectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	require.Equal(t, "Widget", summaries[0].ClassName)
}

func TestHandleModules(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/modules", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var order []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, []string{"core"}, order)
}

func TestHandleEventLoopWithoutLoop(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/eventloop", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
}

func TestHandleObjectNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/objects/999", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, 404, rec.Code)
}
