package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultRESTTimeout = 10 * time.Second

// restJSON keeps integers as int64 so ids decode without float rounding.
var restJSON = sonic.Config{UseInt64: true}.Froze()

type PostgRESTConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *fasthttp.Client
}

// PostgREST reads through a PostgREST-compatible endpoint. Joins use the
// embedded resource syntax so each select is one round trip.
type PostgREST struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewPostgREST(cfg PostgRESTConfig) *PostgREST {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRESTTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                "fpl-companion",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	return &PostgREST{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  client,
	}
}

func (p *PostgREST) Select(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	uri := p.baseURL + "/" + q.Table + "?" + buildRESTQuery(q)
	body, err := p.do(ctx, fasthttp.MethodGet, uri, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "postgrest select %s", q.Table)
	}

	var raw []map[string]any
	if err := restJSON.Unmarshal(body, &raw); err != nil {
		return nil, Permanent(fmt.Errorf("decode postgrest %s response: %w", q.Table, err))
	}

	out := make([]Row, 0, len(raw))
	for _, item := range raw {
		row := Row(item)
		for _, j := range q.Joins {
			row[j.Alias] = embeddedRow(item[j.Alias])
		}
		out = append(out, row)
	}
	return out, nil
}

func (p *PostgREST) Append(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validateAppend(table, rows); err != nil {
		return err
	}

	payload := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		converted := make(map[string]any, len(row))
		for k, v := range row {
			if t, ok := v.(time.Time); ok {
				v = t.UTC().Format(time.RFC3339Nano)
			}
			converted[k] = v
		}
		payload = append(payload, converted)
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return Permanent(fmt.Errorf("encode postgrest %s rows: %w", table, err))
	}

	if _, err := p.do(ctx, fasthttp.MethodPost, p.baseURL+"/"+table, body); err != nil {
		return crerr.Wrapf(err, "postgrest insert %s", table)
	}
	return nil
}

func (p *PostgREST) do(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Transient(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.Header.Set("Prefer", "return=minimal")
		req.SetBody(body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = p.client.DoDeadline(req, resp, deadline)
	} else {
		err = p.client.DoTimeout(req, resp, p.timeout)
	}
	if err != nil {
		return nil, Transient(fmt.Errorf("request %s: %w", method, err))
	}

	status := resp.StatusCode()
	out := append([]byte(nil), resp.Body()...)
	if status/100 != 2 {
		return nil, classifyStatus(status, fmt.Errorf("status=%d body=%s", status, truncate(string(out), 512)))
	}
	return out, nil
}

// buildRESTQuery renders select, filters, order and limit as PostgREST query parameters.
func buildRESTQuery(q Query) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendParam := func(key, value string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte('&')
		}
		_, _ = buf.WriteString(url.QueryEscape(key))
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(value)
	}

	parts := append([]string(nil), q.Columns...)
	for _, j := range q.Joins {
		parts = append(parts, fmt.Sprintf("%s:%s!%s(%s)", j.Alias, j.Table, j.LocalKey, strings.Join(j.Columns, ",")))
	}
	appendParam("select", url.QueryEscape(strings.Join(parts, ",")))

	for _, f := range q.Where {
		appendParam(f.Column, restFilter(f))
	}

	if len(q.Order) > 0 {
		order := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			order = append(order, o.Column+"."+dir+".nullslast")
		}
		appendParam("order", strings.Join(order, ","))
	}
	if q.Limit > 0 {
		appendParam("limit", strconv.Itoa(q.Limit))
	}

	return buf.String()
}

func restFilter(f Filter) string {
	switch f.Op {
	case OpIsNull:
		if want, _ := f.Value.(bool); want {
			return "is.null"
		}
		return "not.is.null"
	case OpIn:
		values, _ := f.Value.([]any)
		items := make([]string, 0, len(values))
		for _, v := range values {
			s := restValue(v)
			if _, isString := v.(string); isString {
				s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
			}
			items = append(items, s)
		}
		return "in." + url.QueryEscape("("+strings.Join(items, ",")+")")
	default:
		return string(f.Op) + "." + url.QueryEscape(restValue(f.Value))
	}
}

func restValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

// embeddedRow unwraps an embedded resource, which PostgREST renders as an
// object for to-one relations and as an array otherwise.
func embeddedRow(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return Row(typed)
	case []any:
		if len(typed) == 0 {
			return nil
		}
		if m, ok := typed[0].(map[string]any); ok {
			return Row(m)
		}
		return nil
	default:
		return nil
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
