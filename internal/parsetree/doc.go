// Package parsetree defines the typed parse tree of a Classic query.
//
// The tree is built by the grammar package and consumed by the render
// package. Node kinds are closed sets expressed as sealed interfaces:
//
//   - Element: *Clause | Operator, the entries of a sequence
//   - Body:    *Group | *Query, the content of a clause
//   - Term:    Word | Phrase | ForbiddenMarker, the leaves
//
// Trees are created per translation and never shared.
package parsetree
