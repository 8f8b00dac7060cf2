// Package soak hydrates persistent entities from untyped payloads.
//
// Given a map decoded from JSON or MessagePack and a registered entity type,
// soak populates the entity through its own setter and adder methods,
// coercing scalar, date, and duration values to the types those methods
// declare and resolving associations either by identifier reference or by
// recursive sub-hydration.
//
// The module is organized into seven packages:
//
//   - [github.com/soaklib/soak/metadata]: entity descriptors, registry, and accessor tables
//   - [github.com/soaklib/soak/hydrate]: the hydration, coercion, and association engine
//   - [github.com/soaklib/soak/inflect]: field-name casing and singularization
//   - [github.com/soaklib/soak/payload]: JSON and MessagePack payload decoding
//   - [github.com/soaklib/soak/mapfile]: mapping-definition files, from DSL parse to codegen
//   - [github.com/soaklib/soak/cache]: byte cache backends and a cached definition source
//   - [github.com/soaklib/soak/store]: SQL-backed reference resolution and persistence
//
// Everything except the store's database drivers works without external
// services. The soakgen command generates entity source from mapping files;
// the soakd command is a small HTTP binder built on the library.
package soak
