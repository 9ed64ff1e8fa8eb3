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

package sgmlreader_test

import (
	"fmt"
	"log"
	"strings"

	sgmlreader "github.com/mindtouch/sgmlreader"
)

// This example demonstrates decoding a fragment of malformed HTML that is
// missing a closing </li> tag, and recovering well-formed events from it
// anyway.
func Example_repairMissingEndTag() {
	const data = `<ul><li>first<li>second</ul>`

	r, err := sgmlreader.NewReader(sgmlreader.Options{
		InputStream: strings.NewReader(data),
		DocType:     "HTML",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	for {
		ok, err := r.Read()
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			break
		}
		switch r.NodeType() {
		case sgmlreader.EventStartElement:
			fmt.Printf("start %s\n", r.Name())
		case sgmlreader.EventEndElement:
			fmt.Printf("end %s\n", r.Name())
		case sgmlreader.EventText:
			fmt.Printf("text %q\n", r.Value())
		}
	}

	// Output:
	// start html
	// start ul
	// start li
	// text "first"
	// end li
	// start li
	// text "second"
	// end li
	// end ul
	// end html
}
