package score

// drumNames maps LilyPond drum names to Strudel sample names. Names absent
// from the table pass through verbatim, so already-Strudel names are stable
// under remapping.
var drumNames = map[string]string{
	"sn":   "sd",  // snare drum
	"ss":   "rim", // side stick
	"hhc":  "hh",  // closed hi-hat
	"hho":  "oh",  // open hi-hat
	"cymc": "cr",  // crash cymbal
	"cymr": "rd",  // ride cymbal
	"tomh": "ht",  // high tom
	"tomm": "mt",  // mid tom
	"toml": "lt",  // low tom
}

// StrudelDrumName translates a LilyPond drum name to its Strudel sample
// name, passing unknown names through unchanged.
func StrudelDrumName(name string) string {
	if mapped, ok := drumNames[name]; ok {
		return mapped
	}
	return name
}

// KnownDrumNames lists the LilyPond drum names the parser accepts. Tokens
// outside this list inside a drum body are skipped rather than rejected.
var KnownDrumNames = []string{
	"bd", "sn", "hh", "hhc", "hho", "hhp", "cymc", "cymr", "cymca", "cymcb",
	"tom", "tomh", "tomm", "toml", "tomfl", "tomfh",
	"cb", "cl", "cp", "cr", "gui", "hc", "lc",
	"mc", "rc", "ride", "rb", "ss", "tamb", "tri", "whl", "whs",
	"pedalhihat", "hihat", "openhat", "closehat",
}

// IsDrumName reports whether name is a recognized LilyPond drum name.
func IsDrumName(name string) bool {
	for _, n := range KnownDrumNames {
		if n == name {
			return true
		}
	}
	return false
}
