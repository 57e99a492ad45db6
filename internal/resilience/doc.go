// Package resilience provides reliability and fault tolerance patterns
// for the application: circuit breaking for the upstream news provider
// and retry with exponential backoff for SMTP delivery.
//
// Usage Example:
//
//	cb := breaker.New(breaker.NewsAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	err := retry.WithBackoff(ctx, retry.SMTPConfig(), func() error {
//	    return performOperation()
//	})
package resilience
