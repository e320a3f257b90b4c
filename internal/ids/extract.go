package ids

import "github.com/jonathan/factory-onboarding/internal/types"

// ExtractExplicitIDs scans raw text for every machine and job ID it mentions.
// No model is involved; the result is the ground truth later stages are
// audited against. Text with no IDs yields empty sets.
func ExtractExplicitIDs(text string) types.ExplicitIDs {
	return types.ExplicitIDs{
		MachineIDs: types.NewIDSet(machineIDScan.FindAllString(text, -1)...),
		JobIDs:     types.NewIDSet(jobIDScan.FindAllString(text, -1)...),
	}
}
