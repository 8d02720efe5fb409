package matrix

import "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"

// MaskValue replaces the value of a masked field.
const MaskValue = "****"

// ApplyFieldMask returns a filtered copy of record. Denied fields are
// dropped, masked fields are replaced with MaskValue and, when an allow
// list is present, every field outside it is dropped. A nil mask returns
// an unfiltered copy.
func ApplyFieldMask(record map[string]any, mask *model.FieldVisibility) map[string]any {
	out := make(map[string]any, len(record))
	if mask == nil {
		for k, v := range record {
			out[k] = v
		}
		return out
	}

	denied := toSet(mask.Denied)
	masked := toSet(mask.Masked)
	allowed := toSet(mask.Allowed)

	for k, v := range record {
		if _, ok := denied[k]; ok {
			continue
		}
		if _, ok := masked[k]; ok {
			out[k] = MaskValue
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[k]; !ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, i := range items {
		set[i] = struct{}{}
	}
	return set
}
