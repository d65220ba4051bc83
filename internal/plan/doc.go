// Package plan resolves canonical target fields to source columns.
//
// Resolution pipeline, per target field (first satisfied tier wins):
//  1. Exact: normalized names are equal (confidence 100)
//  2. Synonym: the source name contains a curated synonym (confidence 80)
//  3. Fuzzy: best similarity above the fuzzy threshold (confidence = score);
//     skipped for the tier/value pivot fields
//  4. Content: the source's semantic tag equals the target; overrides any
//     guess below 90 (confidence 90)
//
// Ties inside a tier go to the earliest source column. A source may serve
// several targets. Targets left unmapped carry ranked candidates so a person
// can finish the mapping.
package plan
