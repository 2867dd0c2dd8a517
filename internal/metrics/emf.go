// Package metrics emits AWS CloudWatch Embedded Metric Format (EMF) documents.
// Each flush writes one JSON line; on Lambda that line goes to stdout, where
// CloudWatch extracts the metrics from the log stream.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

// Namespace is the CloudWatch namespace for all styling metrics.
const Namespace = "VibeFashion"

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Emitter creates Recorders that write to a shared destination. A nil Emitter
// is valid and produces Recorders whose Flush does nothing.
type Emitter struct {
	namespace    string
	functionName string

	mu sync.Mutex // serializes writes so lines never interleave
	w  io.Writer
}

// NewEmitter returns an Emitter writing EMF lines to w. The FunctionName
// dimension is added automatically when running on Lambda.
func NewEmitter(namespace string, w io.Writer) *Emitter {
	return &Emitter{
		namespace:    namespace,
		functionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		w:            w,
	}
}

// New starts a Recorder for one operation.
func (e *Emitter) New() *Recorder {
	r := &Recorder{
		emitter:    e,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]any),
		properties: make(map[string]any),
	}
	if e != nil && e.functionName != "" {
		r.dimensions["FunctionName"] = e.functionName
	}
	return r
}

// Recorder accumulates dimensions, metrics, and properties for a single EMF flush.
// It is not safe for concurrent use; create one per operation.
type Recorder struct {
	emitter    *Emitter
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]any
	properties map[string]any
}

// Dimension adds a dimension key-value pair. Dimensions are indexed in CloudWatch
// and appear as filterable attributes on the metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Duration records d as a millisecond metric.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Microseconds())/1000, UnitMilliseconds)
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the EMF document. Properties are searchable
// in CloudWatch Logs Insights but do not create CloudWatch metrics.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF document as a single JSON line. The Recorder should
// not be reused afterwards.
func (r *Recorder) Flush() {
	e := r.emitter
	if e == nil || e.w == nil || len(r.metrics) == 0 {
		return
	}

	data, err := json.Marshal(r.document(time.Now()))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal EMF metrics")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write EMF metrics")
	}
}

// document builds the EMF object with sorted metric and dimension lists.
func (r *Recorder) document(now time.Time) map[string]any {
	doc := make(map[string]any, len(r.dimensions)+len(r.values)+len(r.properties)+1)

	metricDefs := make([]metricDef, 0, len(r.metrics))
	for _, m := range r.metrics {
		metricDefs = append(metricDefs, m)
	}
	sort.Slice(metricDefs, func(i, j int) bool { return metricDefs[i].Name < metricDefs[j].Name })

	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}
	sort.Strings(dimKeys)

	doc["_aws"] = emfDirective{
		Timestamp: now.UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.emitter.namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    metricDefs,
		}},
	}

	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}
	return doc
}
