// Package classify turns free-text geth log lines into minute-bucketed
// metric names. Classification is a pure function of the line text and the
// rule table; lines that match no known pattern produce no event.
package classify

import (
	"regexp"
	"strings"
)

// Markers that route a log line into a metric family. Checked in order;
// the first family that matches decides the line.
const (
	markerInvalid     = "Discarding invalid transaction"
	markerUnderpriced = "Discarding freshly underpriced transaction"
	markerReplaced    = "Discarding future transaction replacing pending tx"

	metricUnderpriced = "mempool_underpriced"
	metricReplaced    = "mempool_replaced"
)

// linePattern matches geth's bracketed two-part timestamp: [MM-DD|HH:MM:SS.mmm].
// Seconds and milliseconds are captured only to anchor the match; events are
// bucketed to the minute.
var linePattern = regexp.MustCompile(`\[(\d{2}-\d{2})\|(\d{2}:\d{2}):\d{2}\.\d{3}\]\s*(.*)`)

// Classifier assigns metric names to log lines using an ordered rule table.
type Classifier struct {
	rules []Rule
	year  string
}

// New returns a Classifier over the given rule table. year supplies the
// missing year component of geth's short timestamps.
func New(rules []Rule, year string) *Classifier {
	return &Classifier{rules: rules, year: year}
}

// Event is a single classified log line before aggregation.
type Event struct {
	Bucket string // "2006-01-02 15:04"
	Metric string
}

// Classify extracts the minute bucket and metric name from one raw log line.
// The second return is false when the line has no recognizable timestamp or
// matches no metric family; such lines are filtered, not errors.
func (c *Classifier) Classify(line string) (Event, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}

	content := strings.TrimSpace(m[3])
	metric, ok := c.classifyContent(content)
	if !ok {
		return Event{}, false
	}

	return Event{
		Bucket: c.year + "-" + m[1] + " " + m[2],
		Metric: metric,
	}, true
}

func (c *Classifier) classifyContent(content string) (string, bool) {
	switch {
	case strings.Contains(content, markerInvalid):
		for _, r := range c.rules {
			if strings.Contains(content, r.Match) {
				return r.Metric, true
			}
		}
		return MetricOther, true
	case strings.Contains(content, markerUnderpriced):
		return metricUnderpriced, true
	case strings.Contains(content, markerReplaced):
		return metricReplaced, true
	}
	return "", false
}

// Category returns the grouping prefix of a metric name: the leading token
// up to the first underscore ("invalidation", "mempool").
func Category(metric string) string {
	if i := strings.IndexByte(metric, '_'); i >= 0 {
		return metric[:i]
	}
	return metric
}
