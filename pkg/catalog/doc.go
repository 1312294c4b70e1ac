/*
Package catalog maps node kinds to host behaviour.

Graph documents persist a node's Kind but not its transforms or validators,
which are Go closures. A Registry holds a Behavior per kind and re-attaches
it to every node of that kind after a graph is loaded (Registry implements
session.Binder). Kinds may also carry a Template describing the ports a fresh
node of that kind gets; templates are usually written in YAML:

	kind: math.add
	name: Add
	size: {width: 120, height: 60}
	inputs:
	  - {name: In, type: float, value: 0}
	outputs:
	  - {name: Sum, type: float}
*/
package catalog
