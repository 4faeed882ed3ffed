package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rspadim/NNS/pkg/series"
)

// PrometheusSource fetches multi-series history from the Prometheus HTTP
// API. It issues one /api/v1/query_range call and turns every returned
// series into a matrix column, named from its label set. All columns share
// the query's time grid; gaps within a series are forward-filled.
type PrometheusSource struct {
	// ServerURL is the base URL to Prometheus, e.g. http://prometheus:9090.
	ServerURL string
	// Query is the PromQL expression to evaluate.
	Query string
	// Step is the grid resolution (defaults to 60s if not positive).
	Step time.Duration
	// Window is how far back to query from now.
	Window time.Duration
	// HTTPClient is optional; if nil a default client with timeout is used.
	HTTPClient *http.Client
}

func (p *PrometheusSource) Name() string { return "prometheus" }

// Collect implements Source.
func (p *PrometheusSource) Collect(ctx context.Context) (*series.Matrix, error) {
	if p.ServerURL == "" || p.Query == "" {
		return nil, errors.New("prometheus source: ServerURL and Query are required")
	}

	step := p.Step
	if step <= 0 {
		step = time.Minute
	}
	now := time.Now().UTC().Truncate(time.Second)
	start := now.Add(-p.Window)

	u, err := url.Parse(p.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ServerURL: %w", err)
	}
	u.Path = "/api/v1/query_range"

	q := u.Query()
	q.Set("query", p.Query)
	q.Set("start", fmt.Sprintf("%d", start.Unix()))
	q.Set("end", fmt.Sprintf("%d", now.Unix()))
	q.Set("step", fmt.Sprintf("%d", int(step.Seconds())))
	u.RawQuery = q.Encode()

	cli := p.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prometheus: status %d", resp.StatusCode)
	}

	var pr rangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode prometheus response: %w", err)
	}
	if pr.Status != "success" {
		return nil, fmt.Errorf("prometheus status: %s", pr.Status)
	}

	return toMatrix(pr.Data.Result, start.Unix(), now.Unix(), int64(step.Seconds()))
}

type rangeResponse struct {
	Status string    `json:"status"`
	Data   rangeData `json:"data"`
}

type rangeData struct {
	ResultType string       `json:"resultType"`
	Result     []rangeSerie `json:"result"`
}

type rangeSerie struct {
	Metric map[string]string `json:"metric"`
	// Values is an array of [ <unix_time_float>, "<value_string>" ]
	Values [][]any `json:"values"`
}

// toMatrix aligns every returned series onto the [start, end] grid and
// assembles the matrix, columns sorted by series name for a stable order.
func toMatrix(result []rangeSerie, start, end, step int64) (*series.Matrix, error) {
	if len(result) == 0 {
		return nil, errors.New("prometheus: query returned no series")
	}

	rows := int((end-start)/step) + 1

	names := make([]string, 0, len(result))
	byName := make(map[string][]float64, len(result))

	for _, s := range result {
		name := seriesName(s.Metric)
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("prometheus: duplicate series %q", name)
		}

		col, err := fillColumn(s.Values, start, step, rows)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", name, err)
		}

		names = append(names, name)
		byName[name] = col
	}

	sort.Strings(names)
	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i] = byName[name]
	}

	return series.New(names, cols)
}

// fillColumn places samples onto the grid, forward-filling gaps. Samples
// before the first grid point seed the leading fill.
func fillColumn(values [][]any, start, step int64, rows int) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.New("no samples in range")
	}

	samples := make(map[int64]float64, len(values))
	for _, pair := range values {
		ts, val, err := parseSample(pair)
		if err != nil {
			return nil, err
		}
		samples[(ts-start)/step] = val
	}

	firstIdx := int64(-1)
	for i := int64(0); i < int64(rows); i++ {
		if _, ok := samples[i]; ok {
			firstIdx = i
			break
		}
	}
	if firstIdx < 0 {
		return nil, errors.New("no samples on the query grid")
	}

	// Leading gap takes the first observed value; later gaps carry the
	// previous one forward.
	col := make([]float64, rows)
	last := samples[firstIdx]
	for i := 0; i < rows; i++ {
		if v, ok := samples[int64(i)]; ok {
			last = v
		}
		col[i] = last
	}

	return col, nil
}

func parseSample(pair []any) (int64, float64, error) {
	if len(pair) != 2 {
		return 0, 0, fmt.Errorf("invalid value pair length: %d", len(pair))
	}

	var ts int64
	switch v := pair[0].(type) {
	case float64:
		ts = int64(v)
	case json.Number:
		f, _ := v.Float64()
		ts = int64(f)
	default:
		return 0, 0, fmt.Errorf("unexpected timestamp type %T", v)
	}

	var val float64
	switch vv := pair[1].(type) {
	case string:
		f, err := strconv.ParseFloat(vv, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parse value: %w", err)
		}
		val = f
	case float64:
		val = vv
	case json.Number:
		f, _ := vv.Float64()
		val = f
	default:
		return 0, 0, fmt.Errorf("unexpected value type %T", vv)
	}

	return ts, val, nil
}

// seriesName labels a column from the metric's label set: the metric name
// followed by the remaining labels in sorted order.
func seriesName(metric map[string]string) string {
	name := metric["__name__"]

	keys := make([]string, 0, len(metric))
	for k := range metric {
		if k != "__name__" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		if name == "" {
			return "value"
		}
		return name
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", k, metric[k])
	}
	b.WriteByte('}')
	return b.String()
}
