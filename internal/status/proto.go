package status

import (
	"DrawSpectra/internal/model"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto encodes a report as a protobuf Struct:
//
//	{run_id, iteration, distinct, total, timestamp,
//	 top: [{draw: [7 numbers], count}], numbers: [{number, count}]}
//
// Counters are carried as JSON numbers and are exact up to 2^53.
func ToProto(r Report) (*structpb.Struct, error) {
	top := make([]any, len(r.Top))
	for i, e := range r.Top {
		draw := make([]any, len(e.Draw))
		for j, n := range e.Draw {
			draw[j] = float64(n)
		}
		top[i] = map[string]any{"draw": draw, "count": float64(e.Count)}
	}
	numbers := make([]any, len(r.Numbers))
	for i, nc := range r.Numbers {
		numbers[i] = map[string]any{"number": float64(nc.Number), "count": float64(nc.Count)}
	}
	return structpb.NewStruct(map[string]any{
		"run_id":    r.RunID,
		"iteration": float64(r.Iteration),
		"distinct":  float64(r.Distinct),
		"total":     float64(r.Total),
		"timestamp": r.Timestamp.UTC().Format(time.RFC3339Nano),
		"top":       top,
		"numbers":   numbers,
	})
}

// FromProto decodes a report produced by ToProto.
func FromProto(s *structpb.Struct) (Report, error) {
	f := s.GetFields()
	r := Report{
		RunID:     f["run_id"].GetStringValue(),
		Iteration: uint64(f["iteration"].GetNumberValue()),
		Distinct:  int(f["distinct"].GetNumberValue()),
		Total:     uint64(f["total"].GetNumberValue()),
	}
	if ts := f["timestamp"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Report{}, fmt.Errorf("invalid report timestamp: %w", err)
		}
		r.Timestamp = t
	}

	for _, v := range f["top"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		nums := entry["draw"].GetListValue().GetValues()
		if len(nums) != model.DrawSize {
			return Report{}, fmt.Errorf("invalid draw length %d in report", len(nums))
		}
		var d model.Draw
		for j, n := range nums {
			d[j] = uint8(n.GetNumberValue())
		}
		r.Top = append(r.Top, model.Entry{Draw: d, Count: uint64(entry["count"].GetNumberValue())})
	}
	for _, v := range f["numbers"].GetListValue().GetValues() {
		nc := v.GetStructValue().GetFields()
		r.Numbers = append(r.Numbers, model.NumberCount{
			Number: uint8(nc["number"].GetNumberValue()),
			Count:  uint64(nc["count"].GetNumberValue()),
		})
	}
	return r, nil
}
