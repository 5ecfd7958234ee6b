// Package symbols holds per-compilation identifier state for the C++
// generator: the Scope tracker (enclosing method, class and block depth) and
// the Table of type-scoped names, declared variables and reference counts.
//
// Nothing here is shared between compilations. A batch compiler creates one
// Table and one Scope per unit.
package symbols
