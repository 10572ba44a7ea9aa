// Package triage loads a trained disaster-message model and assigns
// response categories to new messages.
//
// Quick start:
//
//	c, err := triage.Open("models/classifier.model")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, _ := c.Classify("We need water and food in Leogane")
//	fmt.Println(p.Categories) // [related request aid_related water food]
//
// A Classifier is safe for concurrent use. Open once, reuse across
// requests. Models are produced by the "triage train" command.
package triage
