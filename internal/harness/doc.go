// Package harness runs conformance suites against the translator.
//
// # Suite Format
//
// Suites are YAML files with the following structure:
//
//	name: plus
//	description: "required-term modifier"
//	cases:
//	  - name: lone
//	    input: "+star"
//	    expect: "(+star)"
//	  - name: unbalanced
//	    input: "..."
//	    error: syntax
//
// A case carries exactly one of expect (the exact output, possibly "") or
// error (the translation must fail with a syntax error).
//
// The same structure is accepted as a CUE file with a top-level suite field:
//
//	suite: {
//		name:        "minus"
//		description: "exclusion modifier"
//		cases: [{name: "lone", input: "-star", expect: "(* AND -star)"}]
//	}
//
// CUE suites are unified with a closed schema, so unknown fields are
// rejected just like in strict YAML decoding.
//
// # Usage
//
//	suite, err := harness.LoadSuite("testdata/suites/plus.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := harness.Run(suite, translate.Default())
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
