/*
Package mustache implements a small logic-less template engine whose output is
driven entirely by the values being rendered.

Instead of reflecting over arbitrary Go values, the engine asks every value to
render itself through the Content interface: whether it is truthy, how it is
written directly, how it behaves as a section, and whether it has a field with
a given name. Field names are hashed once at parse time so implementations can
dispatch on a precomputed hash instead of comparing strings.

Supported tags are {{name}}, {{{name}}}, {{&name}}, {{#name}}...{{/name}},
{{^name}}...{{/name}}, {{! comment}}, {{> partial}} and {{.}} for the current
context. Delimiter changes and lambdas are not supported.
*/
package mustache
