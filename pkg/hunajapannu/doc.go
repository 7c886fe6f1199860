// Package hunajapannu provides honeypot log analytics over a blob store of
// Cowrie JSON log segments.
//
// Quick start:
//
//	store, err := blobstore.NewAzureFromConnectionString(connString, "cowrie-logs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := hunajapannu.New(store)
//
//	report, stats, _ := svc.Analytics(ctx, 24, 5)
//	fmt.Println(report.TotalEvents, stats.TotalLines)
//
// The Service is safe for concurrent use. Create once, reuse across
// requests. See the README for full documentation.
package hunajapannu
