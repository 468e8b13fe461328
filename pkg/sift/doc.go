// Package sift classifies debugging artifacts and compresses each one into
// a bounded, type-specific text summary without calling a language model.
//
// Quick start:
//
//	s, err := sift.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := s.Preprocess(ctx, sift.Artifact{Filename: "app.log", Content: raw})
//	fmt.Println(res.Metadata.DataType, res.Metadata.Strategy)
//
// A Sift is safe for concurrent use. Create once, reuse across requests.
package sift
