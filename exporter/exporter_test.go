package exporter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/valyala/fastjson"

	"github.com/scitags/rdma-res-go/internal/nltest"
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/res"
	"github.com/scitags/rdma-res-go/types"
)

type fakeComm map[uint32]string

func (f fakeComm) Comm(pid uint32) (string, error) {
	name, ok := f[pid]
	if !ok {
		return "", errors.New("no such process")
	}
	return name, nil
}

// fakeTransport answers every dump command with canned replies.
type fakeTransport struct {
	devs  []netlink.Device
	dumps map[netlink.Command][][]byte
}

func (f *fakeTransport) Devices() ([]netlink.Device, error) {
	return f.devs, nil
}

func (f *fakeTransport) Dump(cmd netlink.Command, devIndex, port uint32) ([][]byte, error) {
	msgs, ok := f.dumps[cmd]
	if !ok {
		return nil, errors.New("operation not supported")
	}
	return msgs, nil
}

func addr(s string) []byte {
	return nltest.Sockaddr(netip.MustParseAddrPort(s))
}

func cmID(port, pid uint32) []nltest.Attr {
	return []nltest.Attr{
		nltest.U32(netlink.RDMA_NLDEV_ATTR_PORT_INDEX, port),
		nltest.U32(netlink.RDMA_NLDEV_ATTR_RES_CM_IDN, 12),
		nltest.U8(netlink.RDMA_NLDEV_ATTR_RES_STATE, 5),
		nltest.U32(netlink.RDMA_NLDEV_ATTR_RES_PS, uint32(types.RDMA_PS_TCP)),
		nltest.U32(netlink.RDMA_NLDEV_ATTR_RES_PID, pid),
		nltest.Raw(netlink.RDMA_NLDEV_ATTR_RES_SRC_ADDR, addr("10.0.0.1:5000")),
		nltest.Raw(netlink.RDMA_NLDEV_ATTR_RES_DST_ADDR, addr("10.0.0.2:6000")),
	}
}

func newTestExporter(t *testing.T, kinds ...string) *Exporter {
	t.Helper()

	tr := &fakeTransport{
		devs: []netlink.Device{{Index: 1, Name: "mlx5_0"}},
		dumps: map[netlink.Command][][]byte{
			netlink.RDMA_NLDEV_CMD_RES_CM_ID_GET: {
				nltest.Resource(1, "mlx5_0", netlink.RDMA_NLDEV_ATTR_RES_CM_ID, cmID(1, 1234), cmID(2, 4321)),
			},
		},
	}

	c := DefaultConfig
	c.Log = false
	c.Kinds = kinds

	e, err := New(&c, res.NewClient(tr), fakeComm{1234: "myapp"})
	if err != nil {
		t.Fatalf("error creating the exporter: %v", err)
	}
	return e
}

func get(t *testing.T, e *Exporter, target string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("error reading the body: %v", err)
	}
	return rec.Code, string(body)
}

func TestConfig(t *testing.T) {
	raw, err := os.ReadFile("testdata/exporter.yaml")
	if err != nil {
		t.Fatalf("error reading the configuration: %v", err)
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		t.Fatalf("error parsing the configuration: %v", err)
	}

	if c.Log || c.BindPort != 9999 || c.Period != 1000 {
		t.Errorf("explicit values weren't honoured: %+v", c)
	}
	if c.BindAddress != DefaultConfig.BindAddress || c.Procfs != "/proc" || c.CommTTL != DefaultConfig.CommTTL {
		t.Errorf("defaults weren't kept: %+v", c)
	}
	if strings.Join(c.Kinds, ",") != "cm_id,qp" {
		t.Errorf("wrong kinds %v", c.Kinds)
	}
	if len(DefaultConfig.Kinds) != 5 {
		t.Errorf("the default kinds were overwritten: %v", DefaultConfig.Kinds)
	}
}

func TestNewInvalid(t *testing.T) {
	c := DefaultConfig
	c.Log = false

	c.Kinds = []string{"srq"}
	if _, err := New(&c, res.NewClient(&fakeTransport{}), nil); err == nil {
		t.Errorf("an unknown kind was accepted")
	}

	c.Kinds = nil
	c.Period = 0
	if _, err := New(&c, res.NewClient(&fakeTransport{}), nil); err == nil {
		t.Errorf("a null period was accepted")
	}
}

func TestResources(t *testing.T) {
	e := newTestExporter(t, "cm_id")

	code, body := get(t, e, "/res/cm_id")
	if code != http.StatusOK {
		t.Fatalf("got %d: %s", code, body)
	}

	v, err := fastjson.Parse(body)
	if err != nil {
		t.Fatalf("invalid JSON %q: %v", body, err)
	}
	records := v.GetArray()
	if len(records) != 2 {
		t.Fatalf("got %d records, expected 2", len(records))
	}
	if got := string(records[0].GetStringBytes("comm")); got != "myapp" {
		t.Errorf("got comm %q, expected myapp", got)
	}
	if records[1].Get("comm").Type() != fastjson.TypeNull {
		t.Errorf("an unresolved comm should be null, got %s", records[1].Get("comm"))
	}

	code, body = get(t, e, "/res/cm-id?port=2&dev=mlx5_0")
	if code != http.StatusOK {
		t.Fatalf("got %d: %s", code, body)
	}
	if v, err := fastjson.Parse(body); err != nil || len(v.GetArray()) != 1 || v.GetInt("0", "pid") != 4321 {
		t.Errorf("the port wasn't honoured: %s", body)
	}

	code, body = get(t, e, "/res/cm_id?pid=1234")
	if code != http.StatusOK {
		t.Fatalf("got %d: %s", code, body)
	}
	if v, err := fastjson.Parse(body); err != nil || len(v.GetArray()) != 1 || v.GetInt("0", "pid") != 1234 {
		t.Errorf("the filter wasn't honoured: %s", body)
	}

	code, body = get(t, e, "/res/cm_id?pid=1&pid=2")
	if code != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Errorf("expected an empty array, got %d: %s", code, body)
	}
}

func TestResourcesErrors(t *testing.T) {
	e := newTestExporter(t, "cm_id")

	tests := []struct {
		target string
		code   int
	}{
		{"/res/srq", http.StatusNotFound},
		{"/res/cm_id?bogus=1", http.StatusBadRequest},
		{"/res/cm_id?pid=abc", http.StatusBadRequest},
		{"/res/cm_id?port=abc", http.StatusBadRequest},
		{"/res/cm_id?dev=mlx5_9", http.StatusNotFound},
		{"/res/qp", http.StatusInternalServerError},
	}

	for _, test := range tests {
		code, body := get(t, e, test.target)
		if code != test.code {
			t.Errorf("%s: got %d, expected %d", test.target, code, test.code)
			continue
		}

		var resp errorResponse
		if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.Error == "" {
			t.Errorf("%s: expected an error body, got %q", test.target, body)
		}
	}
}

func TestRoot(t *testing.T) {
	e := newTestExporter(t, "cm_id")

	code, body := get(t, e, "/")
	if code != http.StatusOK {
		t.Fatalf("got %d: %s", code, body)
	}
	for _, path := range []string{"/res/:kind", "/stats", "/metrics"} {
		if !strings.Contains(body, path) {
			t.Errorf("route %s isn't listed in %s", path, body)
		}
	}
}

func TestPoll(t *testing.T) {
	e := newTestExporter(t, "cm_id", "qp")
	e.poll()

	_, body := get(t, e, "/metrics")

	for _, line := range []string{
		`rdma_res_resources{dev="mlx5_0",kind="cm_id"} 2`,
		`rdma_res_poll_errors_total{kind="qp"} 1`,
		`rdma_res_polls_total 1`,
	} {
		if !strings.Contains(body, line) {
			t.Errorf("%q not found in the metrics", line)
		}
	}

	code, body := get(t, e, "/stats")
	if code != http.StatusOK {
		t.Fatalf("got %d: %s", code, body)
	}
	v, err := fastjson.Parse(body)
	if err != nil {
		t.Fatalf("invalid JSON %q: %v", body, err)
	}
	if v.GetUint64("cm_id", "rendered") != 2 || v.Exists("qp") {
		t.Errorf("unexpected stats %s", body)
	}
}
