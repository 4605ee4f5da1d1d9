/*
Package templating loads mustache templates from disk and resolves them by
name.

A Templates registry searches two locations: the site's own template
directory, then the template directory of the selected theme. A site can
therefore override any theme template by placing a file with the same
relative name in its own directory. Templates are named by their slash
separated path relative to the directory they were found in, for example
"page.html" or "partials/header.html"; lookups may omit the configured
extension.

Partials ({{> name}}) are resolved through the same registry, so a theme
template may include a partial the site overrides.
*/
package templating
