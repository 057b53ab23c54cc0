// Package envelope builds ACVP response documents as typed Go structs
// instead of the hand-rolled JSON-tree mutation the original C client
// used (spec.md §9 redesign flag): no tree to leak on an error path,
// because there's no tree — just a struct that either gets returned or
// doesn't.
package envelope

import "encoding/json"

// Document is a full vector-set response: the algorithm's testGroups,
// each carrying its tests in the server's expected shape (spec.md §6).
type Document struct {
	VectorSetID int       `json:"vsId"`
	Algorithm   string    `json:"algorithm"`
	TestGroups  []*Group  `json:"testGroups"`
}

// Group is one response test group, mirroring the request group's tgId.
type Group struct {
	TgID  int     `json:"tgId"`
	Tests []*Test `json:"tests"`
}

// Test is one response test case. Exactly one of CT, PT, TestPassed, or
// ResultsArray is populated depending on direction/test type.
type Test struct {
	TcID         int         `json:"tcId"`
	CT           string      `json:"ct,omitempty"`
	PT           string      `json:"pt,omitempty"`
	TestPassed   *bool       `json:"testPassed,omitempty"`
	ResultsArray []*MCTRound `json:"resultsArray,omitempty"`
}

// MCTRound is one entry of an MCT test's resultsArray: the key split
// fields, the IV (omitted for ECB), and whichever of pt/ct applies.
type MCTRound struct {
	Key1 string `json:"key1"`
	Key2 string `json:"key2"`
	Key3 string `json:"key3"`
	IV   string `json:"iv,omitempty"`
	PT   string `json:"pt,omitempty"`
	CT   string `json:"ct,omitempty"`
}

// New starts a response document for one vector set.
func New(vectorSetID int, algorithm string) *Document {
	return &Document{VectorSetID: vectorSetID, Algorithm: algorithm}
}

// AddGroup appends and returns a new response group with the given tgId.
func (d *Document) AddGroup(tgID int) *Group {
	g := &Group{TgID: tgID}
	d.TestGroups = append(d.TestGroups, g)
	return g
}

// AddEncrypt records an AFT encrypt result.
func (g *Group) AddEncrypt(tcID int, ctHex string) *Test {
	t := &Test{TcID: tcID, CT: ctHex}
	g.Tests = append(g.Tests, t)
	return t
}

// AddDecrypt records an AFT decrypt result.
func (g *Group) AddDecrypt(tcID int, ptHex string) *Test {
	t := &Test{TcID: tcID, PT: ptHex}
	g.Tests = append(g.Tests, t)
	return t
}

// AddTestPassed records a key-wrap integrity-check result.
func (g *Group) AddTestPassed(tcID int, passed bool) *Test {
	t := &Test{TcID: tcID, TestPassed: &passed}
	g.Tests = append(g.Tests, t)
	return t
}

// AddMCT records a full Monte-Carlo trace for one test case.
func (g *Group) AddMCT(tcID int, rounds []*MCTRound) *Test {
	t := &Test{TcID: tcID, ResultsArray: rounds}
	g.Tests = append(g.Tests, t)
	return t
}

// Marshal renders the document as the JSON body to submit.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}
