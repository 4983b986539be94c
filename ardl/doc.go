// Package ardl estimates, forecasts and selects the lag order of
// Autoregressive Distributed Lag models.
//
// An ARDL model regresses a series on deterministic terms, its own lags,
// lags of one or more exogenous series and optional fixed regressors:
//
//	y_t = d_t'delta + sum_i phi_i y_{t-i} + sum_k sum_j beta_kj x_{k,t-j} + z_t'gamma + e_t
//
// # Building a model
//
//	m, err := ardl.New(ardl.Data{
//	    Endog:     y,
//	    Exog:      x,
//	    ExogNames: []string{"income"},
//	}, ardl.ModelSpec{
//	    Lags:  ardl.UpTo(2),
//	    Order: ardl.Uniform(ardl.UpTo(1)),
//	    Trend: deterministic.TrendConst,
//	})
//
// Lag requests are LagSpec values: Excluded(), UpTo(k) or Lags(1, 4).
// Per-variable requests use PerVariable or ByColumn. Columns of the design
// are named "<variable>.L<lag>".
//
// # Estimation and forecasting
//
//	res, err := m.Fit(ardl.FitOptions{CovType: "HC0"})
//	fmt.Println(res.Summary())
//
//	// three steps ahead with future exog values
//	fc, err := res.Forecast(3, xFuture, nil)
//
// Predict covers in-sample and out-of-sample ranges. With Dynamic set, the
// endogenous lags from DynamicStart onward are replaced by earlier
// predictions.
//
// # Order selection
//
//	sel, err := ardl.SelectOrder(data, ardl.SelectSpec{
//	    Model:    ardl.ModelSpec{Trend: deterministic.TrendConst},
//	    MaxLag:   4,
//	    MaxOrder: ardl.Uniform(ardl.UpTo(4)),
//	    IC:       ardl.CriterionBIC,
//	})
//
// The nested search keeps leading lags of each block; the global search
// scores every subset of lag columns and grows as 2^columns. Use
// CandidateCount and SelectSpec.MaxCandidates to bound it.
package ardl
