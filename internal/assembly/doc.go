// Package assembly implements the context assembly engine.
//
// Given a loosely specified deliverable request ("everything we know
// relevant to producing X for audience Y"), the engine plans one query per
// knowledge category, runs them concurrently against the memory store,
// fuses the raw results into typed insight sections, and scores how
// complete the assembled context is.
//
// The pipeline is strictly one-directional:
//
//	request -> query specs -> parallel raw results -> fused sections + score -> package
//
// No component mutates another's output after it is produced, and every
// stage except retrieval is a pure function over already-fetched data. A
// caller always receives a structurally complete ContextPackage: retrieval
// failures degrade the confidence score and gap list instead of raising
// errors. Only request validation can fail the call.
package assembly
