// Package classify decides the outcome of a scraped post from its comments.
//
// A post lands in exactly one of four outcomes. The admin-priority rule is the
// heart of it: when any admin-like comment exists, only admin comments are
// checked for target-species mentions; mentions by regular members are ignored.
// Admin-likeness itself is an ordered list of independent signal checks
// (staff roster, structured flags, role strings, badges, inline marker) that
// short-circuits on the first hit.
//
// Classification is total: malformed or missing fields are treated as empty
// and every input produces exactly one outcome.
package classify
