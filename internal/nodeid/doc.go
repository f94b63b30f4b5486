// internal/nodeid/doc.go

/*
Package nodeid provides the opaque identifiers used for nodes and edges of
user-authored graphs.

Both NodeID and EdgeID are 128-bit UUIDs. They serialize as the canonical
hyphenated string form, which also makes them usable as JSON object keys,
so graphs travel as `{nodes: {id: node}, edges: {id: edge}}` objects.

The two identifier kinds are distinct types so that an edge id can never be
used where a node id is expected.
*/
package nodeid
