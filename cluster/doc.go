// Package cluster supervises a set of independently lifecycled servers.
//
// Members are registered under unique names and started or stopped
// together. StartAll and StopAll reach every member concurrently and never
// abort on the first failure: the caller receives every *MemberError at
// once and can inspect the state of each member afterwards.
//
//	c := cluster.New(cluster.WithLogger(logger))
//	_ = c.Add("public", server.New(publicCfg))
//	_ = c.Add("admin", server.New(adminCfg))
//
//	if err := c.StartAll(ctx); err != nil {
//		for _, merr := range cluster.MemberErrors(err) {
//			logger.Error("member failed", "member", merr.Name, "error", merr.Err)
//		}
//	}
package cluster
