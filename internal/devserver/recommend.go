package devserver

import "hash/fnv"

// Canned recommendation sets. The production backend derives these from
// image analysis; the stub picks a set deterministically per filename so
// repeated runs and tests see stable output.
var recommendationPool = [][]string{
	{
		"Image appears underexposed; increase brightness",
		"Shadows are crushed; a brightness boost would help",
	},
	{
		"Image appears overexposed; reduce brightness",
	},
	{
		"Low contrast detected; consider boosting contrast",
		"Colors look flat; vibrancy could be improved",
	},
	{
		"Well balanced exposure; no changes needed",
	},
	{
		"High color noise; converting to grayscale may help",
		"Image appears underexposed; increase brightness",
	},
}

func recommendationsFor(name string) []string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return recommendationPool[h.Sum32()%uint32(len(recommendationPool))]
}
