package misc

// Nothing is the argument or reply of RPC methods that carry no data
type Nothing struct{}
