/*
Package content holds the dynamic values that page metadata is decoded into
and adapts them to the mustache rendering contract.

A Value is an immutable tagged union of the shapes a TOML or YAML document can
produce: numbers, strings, date-times, lists and insertion-ordered maps. Two
adapters complete the package: DateTime exposes its components as single
character synthetic fields ({{#date}}{{y}}-{{m}}-{{d}}{{/date}}), and
PathSegments turns a relative path into breadcrumb sections of name/full
pairs.

Values are never mutated after construction, so a tree may be rendered from
any number of goroutines at once.
*/
package content
