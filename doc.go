// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sgmlreader is a pull-style reader that consumes SGML-family
// markup, most importantly real-world HTML, and exposes it as a stream of
// well-formed XML events.
//
// Unlike a strict XML decoder, Reader repairs the input as it goes: it adds
// quotes around bare attribute values, drops duplicate attributes, closes
// elements a DTD marks as having an optional end tag, and recovers from
// stray characters and broken entities instead of failing on them. The
// consumer of Reader never has to deal with the mess, only a well-formed
// event stream.
//
// Reader reuses Node and Attribute records across a parse through a
// high-water stack (see stack.go): a record is only ever allocated once and
// is reset in place on every subsequent reuse, the same discipline
// go-xml's Decoder uses for its token buffers.
package sgmlreader
