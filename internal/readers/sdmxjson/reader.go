// Package sdmxjson decodes SDMX-JSON data messages: the structured-text
// wire format in which component values are declared once in value
// tables and observations refer to them by index.
package sdmxjson

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.Reader = (*Reader)(nil)

// Reader decodes SDMX-JSON 1.0 data messages.
type Reader struct{}

// New creates a new SDMX-JSON reader.
func New() *Reader {
	return &Reader{}
}

// SupportedContentTypes returns the media types this reader handles.
func (r *Reader) SupportedContentTypes() []string {
	return []string{
		"application/json",
		"application/vnd.sdmx.data+json",
	}
}

// SupportedExtensions returns the file extensions this reader handles.
func (r *Reader) SupportedExtensions() []string {
	return []string{".json"}
}

// Priority returns the selection priority.
func (r *Reader) Priority() int {
	return 40
}

// Wire shapes. Component values live in per-dimension tables; data
// refers to them positionally.

type jsonMessage struct {
	Header    *jsonHeader   `json:"header"`
	Structure jsonStructure `json:"structure"`
	DataSets  []jsonDataSet `json:"dataSets"`
	Errors    []jsonError   `json:"errors"`
}

type jsonHeader struct {
	ID       string     `json:"id"`
	Test     bool       `json:"test"`
	Prepared string     `json:"prepared"`
	Sender   *jsonParty `json:"sender"`
	Receiver *jsonParty `json:"receiver"`
}

type jsonParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type jsonStructure struct {
	Name       string         `json:"name"`
	Dimensions jsonComponents `json:"dimensions"`
	Attributes jsonComponents `json:"attributes"`
}

type jsonComponents struct {
	DataSet     []jsonComponent `json:"dataSet"`
	Series      []jsonComponent `json:"series"`
	Observation []jsonComponent `json:"observation"`
}

type jsonComponent struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	KeyPosition int         `json:"keyPosition"`
	Values      []jsonValue `json:"values"`
}

type jsonValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type jsonDataSet struct {
	Action       string                       `json:"action"`
	Attributes   []*int                       `json:"attributes"`
	Series       map[string]jsonSeries        `json:"series"`
	Observations map[string][]json.RawMessage `json:"observations"`
}

type jsonSeries struct {
	Attributes   []*int                       `json:"attributes"`
	Observations map[string][]json.RawMessage `json:"observations"`
}

type jsonError struct {
	Code  int    `json:"code"`
	Title string `json:"title"`
}

// Read decodes a complete SDMX-JSON message.
func (r *Reader) Read(_ context.Context, raw *driven.RawMessage, opts driven.ReadOptions) (*domain.Message, error) {
	var wire jsonMessage
	if err := json.Unmarshal(raw.Body, &wire); err != nil {
		return nil, errors.Wrap(domain.ErrMalformedDocument, err.Error())
	}
	if len(wire.Errors) > 0 {
		e := wire.Errors[0]
		return nil, &domain.RetrievalError{StatusCode: e.Code, URL: raw.URL, Body: e.Title}
	}

	msg := &domain.Message{}
	if wire.Header != nil {
		msg.Header.ID = wire.Header.ID
		msg.Header.Test = wire.Header.Test
		msg.Header.Prepared = parsePrepared(wire.Header.Prepared)
		if wire.Header.Sender != nil {
			msg.Header.Sender = party(wire.Header.Sender)
		}
		if wire.Header.Receiver != nil {
			msg.Header.Receiver = party(wire.Header.Receiver)
		}
	}

	a := &assembler{structure: wire.Structure, opts: opts}
	for _, jds := range wire.DataSets {
		ds, err := a.dataSet(jds)
		if err != nil {
			return nil, err
		}
		msg.DataSets = append(msg.DataSets, ds)
	}
	return msg, nil
}

// headerTimeLayouts are the timestamp shapes providers emit in
// prepared fields.
var headerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePrepared(s string) time.Time {
	for _, layout := range headerTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func party(p *jsonParty) domain.Party {
	out := domain.Party{ID: p.ID}
	if p.Name != "" {
		out.Name = out.Name.Set("en", p.Name)
	}
	return out
}

// assembler turns value-table indices back into keyed observations.
type assembler struct {
	structure jsonStructure
	opts      driven.ReadOptions
}

// dimensionAtObservation is the observation-level dimension of the
// message, or AllDimensions when the message keys observations fully.
func (a *assembler) dimensionAtObservation() string {
	if a.opts.DimensionAtObservation != "" {
		return a.opts.DimensionAtObservation
	}
	obs := a.structure.Dimensions.Observation
	if len(obs) == 1 {
		return obs[0].ID
	}
	return domain.AllDimensions
}

func (a *assembler) dataSet(jds jsonDataSet) (*domain.DataSet, error) {
	dimAtObs := a.dimensionAtObservation()
	if len(jds.Series) == 0 && len(jds.Observations) > 0 {
		dimAtObs = domain.AllDimensions
	}
	ds := domain.NewDataSet(dimAtObs)
	ds.Action = domain.DataSetAction(jds.Action)
	ds.Structure = a.opts.Structure

	var err error
	ds.Attributes, err = a.attributeValues(a.structure.Attributes.DataSet, jds.Attributes)
	if err != nil {
		return nil, err
	}
	for _, kv := range a.structure.Dimensions.DataSet {
		// Dataset-level dimensions are constant across the message;
		// their single declared value applies to every series key.
		if len(kv.Values) != 1 {
			return nil, errors.Wrapf(domain.ErrMalformedDocument,
				"dataset-level dimension %q must declare exactly one value", kv.ID)
		}
	}

	for rawKey, js := range jds.Series {
		if err := a.series(ds, rawKey, js); err != nil {
			return nil, err
		}
	}
	for rawKey, values := range jds.Observations {
		obs, err := a.flatObservation(rawKey, values)
		if err != nil {
			return nil, err
		}
		ds.AddObservation(nil, obs)
	}
	return ds, nil
}

func (a *assembler) series(ds *domain.DataSet, rawKey string, js jsonSeries) error {
	pairs, err := a.keyPairs(a.structure.Dimensions.Series, rawKey)
	if err != nil {
		return err
	}
	key := domain.NewSeriesKey(a.withDataSetDimensions(pairs)...)
	key.Attributes, err = a.attributeValues(a.structure.Attributes.Series, js.Attributes)
	if err != nil {
		return err
	}
	series := ds.AddSeries(key)

	obsDims := a.structure.Dimensions.Observation
	for rawIdx, values := range js.Observations {
		obs := &domain.Observation{}
		indices, err := splitIndices(rawIdx)
		if err != nil {
			return err
		}
		if len(indices) > len(obsDims) {
			return errors.Wrapf(domain.ErrMalformedDocument,
				"observation key %q exceeds the %d observation dimensions", rawIdx, len(obsDims))
		}
		for i, idx := range indices {
			v, err := valueAt(obsDims[i], idx)
			if err != nil {
				return err
			}
			obs.Dimension = obs.Dimension.WithValue(obsDims[i].ID, v)
		}
		if err := a.fillObservation(obs, values); err != nil {
			return err
		}
		ds.AddObservation(series, obs)
	}
	return nil
}

// flatObservation decodes one fully keyed observation of a flat
// message: the key indexes series and observation dimension tables in
// declaration order.
func (a *assembler) flatObservation(rawKey string, values []json.RawMessage) (*domain.Observation, error) {
	dims := append(append([]jsonComponent{}, a.structure.Dimensions.Series...),
		a.structure.Dimensions.Observation...)
	pairs, err := a.keyPairs(dims, rawKey)
	if err != nil {
		return nil, err
	}
	obs := &domain.Observation{Dimension: domain.NewKey(a.withDataSetDimensions(pairs)...)}
	if err := a.fillObservation(obs, values); err != nil {
		return nil, err
	}
	return obs, nil
}

// fillObservation reads the observation array: the value first, then
// indices into the observation-attribute value tables.
func (a *assembler) fillObservation(obs *domain.Observation, values []json.RawMessage) error {
	if len(values) == 0 {
		return nil
	}
	obs.Value = scalarText(values[0])
	obsAttrs := a.structure.Attributes.Observation
	for i, raw := range values[1:] {
		if i >= len(obsAttrs) {
			break
		}
		idx, ok := intIndex(raw)
		if !ok {
			continue
		}
		v, err := valueAt(obsAttrs[i], idx)
		if err != nil {
			return err
		}
		obs.Attributes = append(obs.Attributes, domain.AttributeValue{ID: obsAttrs[i].ID, Value: v})
	}
	return nil
}

// keyPairs resolves a colon-separated index key against component
// value tables.
func (a *assembler) keyPairs(components []jsonComponent, rawKey string) ([]domain.KeyValue, error) {
	indices, err := splitIndices(rawKey)
	if err != nil {
		return nil, err
	}
	if len(indices) != len(components) {
		return nil, errors.Wrapf(domain.ErrMalformedDocument,
			"key %q has %d parts for %d dimensions", rawKey, len(indices), len(components))
	}
	pairs := make([]domain.KeyValue, len(indices))
	for i, idx := range indices {
		v, err := valueAt(components[i], idx)
		if err != nil {
			return nil, err
		}
		pairs[i] = domain.KeyValue{ID: components[i].ID, Value: v}
	}
	return pairs, nil
}

// withDataSetDimensions prepends the message-constant dimensions so
// every key is complete on its own.
func (a *assembler) withDataSetDimensions(pairs []domain.KeyValue) []domain.KeyValue {
	fixed := a.structure.Dimensions.DataSet
	if len(fixed) == 0 {
		return pairs
	}
	out := make([]domain.KeyValue, 0, len(fixed)+len(pairs))
	for _, c := range fixed {
		if len(c.Values) == 1 {
			out = append(out, domain.KeyValue{ID: c.ID, Value: c.Values[0].ID})
		}
	}
	return append(out, pairs...)
}

func (a *assembler) attributeValues(components []jsonComponent, indices []*int) ([]domain.AttributeValue, error) {
	var out []domain.AttributeValue
	for i, idx := range indices {
		if idx == nil || i >= len(components) {
			continue
		}
		v, err := valueAt(components[i], *idx)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AttributeValue{ID: components[i].ID, Value: v})
	}
	return out, nil
}

func valueAt(c jsonComponent, idx int) (string, error) {
	if idx < 0 || idx >= len(c.Values) {
		return "", errors.Wrapf(domain.ErrMalformedDocument,
			"index %d out of range for component %q", idx, c.ID)
	}
	return c.Values[idx].ID, nil
}

func splitIndices(rawKey string) ([]int, error) {
	parts := strings.Split(rawKey, ":")
	indices := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrMalformedDocument, "malformed key %q", rawKey)
		}
		indices[i] = n
	}
	return indices, nil
}

// scalarText renders a JSON scalar as its observation text: numbers
// keep their literal form, strings drop quotes, null is empty.
func scalarText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return s
}

func intIndex(raw json.RawMessage) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	return n, err == nil
}
