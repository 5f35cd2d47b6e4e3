// Package value holds the dynamic document model used for loosely-typed
// manifest sections such as autoload, scripts, extra and repositories.
//
// A Value is one of Null, Bool, Number, String, List or *Map. Lists are
// addressed by position and maps by name; maps remember insertion order so
// merged documents serialize deterministically. The distinction between the
// two container kinds is what the deep merge in package merge keys on.
//
// JSON decoding and encoding go through fastjson, which keeps object keys in
// document order.
package value
