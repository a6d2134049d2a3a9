// Package metrics emits CloudWatch Embedded Metric Format (EMF) documents.
// Each flush writes one JSON line; on Lambda, CloudWatch Logs extracts the
// metrics from stdout with no API call.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Namespace is the CloudWatch namespace for every room-edit metric.
const Namespace = "RoomEdit"

// CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type directive struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder accumulates one EMF document. It is not safe for concurrent use;
// create one per operation.
type Recorder struct {
	namespace  string
	out        io.Writer
	now        func() time.Time
	dimensions map[string]string
	units      map[string]string
	values     map[string]float64
	properties map[string]any
}

// New creates a Recorder writing to stdout. The FunctionName dimension is
// added when running on Lambda.
func New(namespace string) *Recorder {
	r := &Recorder{
		namespace:  namespace,
		out:        os.Stdout,
		now:        time.Now,
		dimensions: make(map[string]string),
		units:      make(map[string]string),
		values:     make(map[string]float64),
		properties: make(map[string]any),
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		r.dimensions["FunctionName"] = fn
	}
	return r
}

// To redirects the document to w.
func (r *Recorder) To(w io.Writer) *Recorder {
	r.out = w
	return r
}

// Dimension adds an indexed dimension.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.units[name] = unit
	r.values[name] = value
	return r
}

// Count records a count of one.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Duration records d in milliseconds.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Microseconds())/1000, UnitMilliseconds)
}

// Property adds a searchable field that is not a metric.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the document as a single line. A recorder with no metrics
// writes nothing. The Recorder should not be reused afterwards.
func (r *Recorder) Flush() {
	if len(r.values) == 0 {
		return
	}

	names := sortedKeys(r.units)
	defs := make([]metricDef, 0, len(names))
	for _, n := range names {
		defs = append(defs, metricDef{Name: n, Unit: r.units[n]})
	}

	doc := make(map[string]any, len(r.dimensions)+len(r.values)+len(r.properties)+1)
	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}
	doc["_aws"] = directive{
		Timestamp: r.now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{sortedKeys(r.dimensions)},
			Metrics:    defs,
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to marshal metrics: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
