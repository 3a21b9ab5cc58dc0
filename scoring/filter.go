package scoring

// Postprocessor filters or modifies the detections of one image.
type Postprocessor func([]Detection) []Detection

// NewConfidenceFilter returns a Postprocessor that drops detections below
// minConf. A minConf of zero or less keeps everything.
func NewConfidenceFilter(minConf float64) Postprocessor {
	return func(in []Detection) []Detection {
		if minConf <= 0 {
			return in
		}
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= minConf {
				out = append(out, d)
			}
		}
		return out
	}
}
