package vehiclesync

// SyncRequest is the body of the on-demand sync endpoint. TenantId may also
// arrive as a query parameter; the body wins when both are present.
type SyncRequest struct {
	TenantId string `json:"tenantId"`
}

// SyncResponse mirrors the payload the mobile client expects from a manual
// sync: the count of products written and the full mapping written.
type SyncResponse struct {
	Success                bool               `json:"success"`
	Message                string             `json:"message"`
	ProductosSincronizados int                `json:"productosSincronizados"`
	Inventario             map[string]float64 `json:"inventario"`
}

// StatusResponse summarizes the current snapshot for a tenant.
type StatusResponse struct {
	TenantId                    string             `json:"tenantId"`
	Exists                      bool               `json:"exists"`
	Plan                        string             `json:"plan,omitempty"`
	Fecha                       string             `json:"fecha,omitempty"`
	ProductCount                int                `json:"productCount"`
	Inventario                  map[string]float64 `json:"inventario,omitempty"`
	SincronizadoAutomaticamente bool               `json:"sincronizadoAutomaticamente"`
	SincronizadoManualmente     bool               `json:"sincronizadoManualmente"`
	InicializadoPor             string             `json:"inicializadoPor,omitempty"`
}

// PubSubPushEnvelope is the JSON body Google Pub/Sub delivers to a push
// subscription endpoint.
type PubSubPushEnvelope struct {
	Message struct {
		Data        []byte            `json:"data"`
		Attributes  map[string]string `json:"attributes"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}
