// Package pollsearch embeds the poll results widget core: each scope's
// record set is fetched once, then searched, sorted and paged locally.
//
// # Sessions: one widget per user
//
//	client, _ := pollsearch.New(pollsearch.WithFixtures("config/fixtures.yaml"))
//	defer client.Close()
//
//	s := client.NewSession()
//	view, _ := s.SelectScope(ctx, "101")
//	view = s.Search("purple")
//	view, _ = s.ChangeSort("random")
//	view, _ = s.Next()
//
// # One-shot queries
//
//	view, _ := client.Query("101").Term("purple").Sort("Id:asc").Page(2).Do(ctx)
//
// # Typed records
//
//	type Song struct {
//	    ID    int    `pollsearch:"Id"`
//	    Title string `pollsearch:"Title"`
//	    Band  string `pollsearch:"BandName"`
//	}
//
//	songs, _ := pollsearch.DecodeView[Song](view)
package pollsearch
