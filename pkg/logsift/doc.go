// Package logsift provides an embeddable log anomaly detector. It embeds
// log messages into vectors and matches them against a trained set of
// pattern centroids; messages near no centroid are anomalies.
//
// Quick start:
//
//	s, err := logsift.New("centroids.json", logsift.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	dec, _ := s.Observe("sshd[4321]: Failed password for root from 10.0.0.8")
//	if !dec.Matched {
//	    fmt.Println("anomaly:", dec.Distance)
//	}
//
//	s.Save() // persist the nudged centroids
//
// Observe mutates the centroid set in memory; call Save to persist. A
// Sifter serializes its own state and is safe for concurrent use.
package logsift
