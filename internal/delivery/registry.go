package delivery

import "github.com/lukman83/dishscout/internal/platform"

// defaultUserAgent is replaced by a rotating fingerprint when calls go
// through the stealth transport.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

// Constructor builds one adapter from shared options.
type Constructor func(Options) *Adapter

// Constructors lists every supported platform by registry id.
var Constructors = map[string]Constructor{
	"snoonu":     NewSnoonu,
	"rafeeq":     NewRafeeq,
	"talabat":    NewTalabat,
	"talabat-sa": NewTalabatSA,
}

// RegisterAll registers every platform in reg. optsFor supplies per-platform
// options such as timeouts.
func RegisterAll(reg *platform.Registry, optsFor func(id string) Options) {
	for id, build := range Constructors {
		reg.Register(build(optsFor(id)))
	}
}
