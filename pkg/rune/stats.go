package rune

import (
	"expvar"
	"strings"
)

// engineStats is published as the "rune" map on /debug/vars.
var engineStats = expvar.NewMap("rune")

const (
	statCompiles    = "compiles"
	statLoopCeiling = "loop_ceiling_hits"
)

func recordCompile(err error) {
	engineStats.Add(statCompiles, 1)
	if err != nil {
		engineStats.Add(errorStatKey(AsError(err).Kind), 1)
	}
}

func errorStatKey(k ErrorKind) string {
	return "errors." + strings.ReplaceAll(k.String(), " ", "_")
}

// Stats returns a snapshot of the engine counters: compiles, failures by
// error kind and loop ceiling hits.
func Stats() map[string]int64 {
	out := map[string]int64{}
	engineStats.Do(func(kv expvar.KeyValue) {
		if n, ok := kv.Value.(*expvar.Int); ok {
			out[kv.Key] = n.Value()
		}
	})
	return out
}
