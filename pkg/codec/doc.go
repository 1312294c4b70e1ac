/*
Package codec encodes reactive entities into a hierarchical document and
decodes them back, preserving identity.

Entities are described by a static table of fields registered once per entity
kind (see RegisterKind). Each field is one of:

  - Leaf: a scalar or structured value, emitted as a Property element carrying
    the registered value type name.
  - Nested: an owned entity, emitted inline as an Entity element.
  - Reference: a deferred pointer, emitted as a Ref element carrying only the
    target identifier.
  - Collection / References: repeated sibling elements sharing the field name,
    in list order.

A document element tree looks like this in XML:

	<Entity FullType="weft.Node" Guid="...">
	  <Property Name="Name" FullType="string">"Add"</Property>
	  <Ref Name="Parent" Guid="..."/>
	  <Entity Name="Inputs" FullType="weft.Property" Guid="...">...</Entity>
	</Entity>

Leaf payloads are JSON text in XML documents and native nodes in YAML
documents; both are decoded into the registered Go type with mapstructure.

Decoding is tolerant: unknown types and malformed values are recorded in a
Report and the affected field is left unset.
*/
package codec
