package report

// WorkOrder is the order the coordinator hands to the inspector before the
// visit.
type WorkOrder struct {
	Inspector        string `json:"inspector"`
	CodigoInspector  string `json:"codigoInspector"`
	MovilInspector   string `json:"movilInspector"`
	Coordinador      string `json:"coordinador"`
	MovilCoordinador string `json:"movilCoordinador"`

	ExpedienteNova  string `json:"expedienteNova"`
	PaisDestino     string `json:"paisDestino"`
	FechaInspeccion string `json:"fechaInspeccion"`
	HoraInspeccion  string `json:"horaInspeccion"`
	PersonaContacto string `json:"personaContacto"`

	ExpedienteCliente  string `json:"expedienteCliente"`
	Exportador         string `json:"exportador"`
	Importador         string `json:"importador"`
	NumeroContrato     string `json:"numeroContrato"`
	SuplementoContrato string `json:"suplementoContrato"`

	LugarInspeccion       string `json:"lugarInspeccion"`
	Direccion             string `json:"direccion"`
	CodigoPostal          string `json:"codigoPostal"`
	Poblacion             string `json:"poblacion"`
	Provincia             string `json:"provincia"`
	TelefonoContacto      string `json:"telefonoContacto"`
	OtrosDetallesContacto string `json:"otrosDetallesContacto"`

	CantidadTipoContenedor  string `json:"cantidadTipoContenedor"`
	HorariosPrevisosCarga   string `json:"horariosPrevisosCarga"`
	DescripcionMercancia    string `json:"descripcionMercancia"`
	PuertoAeropuertoOrigen  string `json:"puertoAeropuertoOrigen"`
	PuertoAeropuertoDestino string `json:"puertoAeropuertoDestino"`
	Buque                   string `json:"buque"`

	AlcanceSupervision Flags     `json:"alcanceSupervision"`
	Bultos             TriStates `json:"bultos"`

	ObservacionesEspeciales string `json:"observacionesEspeciales"`
}

// NewWorkOrder returns a work order with every group member present.
func NewWorkOrder() *WorkOrder {
	w := &WorkOrder{}
	WorkOrderSchema.Init(w)
	return w
}

var WorkOrderSchema = &Schema[WorkOrder]{
	Type: TypeWorkOrder,
	Text: []TextField[WorkOrder]{
		{"inspector", func(w *WorkOrder) *string { return &w.Inspector }},
		{"codigoInspector", func(w *WorkOrder) *string { return &w.CodigoInspector }},
		{"movilInspector", func(w *WorkOrder) *string { return &w.MovilInspector }},
		{"coordinador", func(w *WorkOrder) *string { return &w.Coordinador }},
		{"movilCoordinador", func(w *WorkOrder) *string { return &w.MovilCoordinador }},
		{"expedienteNova", func(w *WorkOrder) *string { return &w.ExpedienteNova }},
		{"paisDestino", func(w *WorkOrder) *string { return &w.PaisDestino }},
		{"fechaInspeccion", func(w *WorkOrder) *string { return &w.FechaInspeccion }},
		{"horaInspeccion", func(w *WorkOrder) *string { return &w.HoraInspeccion }},
		{"personaContacto", func(w *WorkOrder) *string { return &w.PersonaContacto }},
		{"expedienteCliente", func(w *WorkOrder) *string { return &w.ExpedienteCliente }},
		{"exportador", func(w *WorkOrder) *string { return &w.Exportador }},
		{"importador", func(w *WorkOrder) *string { return &w.Importador }},
		{"numeroContrato", func(w *WorkOrder) *string { return &w.NumeroContrato }},
		{"suplementoContrato", func(w *WorkOrder) *string { return &w.SuplementoContrato }},
		{"lugarInspeccion", func(w *WorkOrder) *string { return &w.LugarInspeccion }},
		{"direccion", func(w *WorkOrder) *string { return &w.Direccion }},
		{"codigoPostal", func(w *WorkOrder) *string { return &w.CodigoPostal }},
		{"poblacion", func(w *WorkOrder) *string { return &w.Poblacion }},
		{"provincia", func(w *WorkOrder) *string { return &w.Provincia }},
		{"telefonoContacto", func(w *WorkOrder) *string { return &w.TelefonoContacto }},
		{"otrosDetallesContacto", func(w *WorkOrder) *string { return &w.OtrosDetallesContacto }},
		{"cantidadTipoContenedor", func(w *WorkOrder) *string { return &w.CantidadTipoContenedor }},
		{"horariosPrevisosCarga", func(w *WorkOrder) *string { return &w.HorariosPrevisosCarga }},
		{"descripcionMercancia", func(w *WorkOrder) *string { return &w.DescripcionMercancia }},
		{"puertoAeropuertoOrigen", func(w *WorkOrder) *string { return &w.PuertoAeropuertoOrigen }},
		{"puertoAeropuertoDestino", func(w *WorkOrder) *string { return &w.PuertoAeropuertoDestino }},
		{"buque", func(w *WorkOrder) *string { return &w.Buque }},
		{"observacionesEspeciales", func(w *WorkOrder) *string { return &w.ObservacionesEspeciales }},
	},
	Groups: []GroupField[WorkOrder]{
		{
			Key: "alcanceSupervision",
			Options: []Option{
				{"revisionEstadoContenedor", "Revisión del estado del contenedor"},
				{"conteoBultos", "Conteo de bultos"},
				{"embalaje", "Embalaje"},
				{"paletsFumigados", "Palets fumigados"},
				{"marcas", "Marcas"},
				{"descripcionEstiba", "Descripción de estiba"},
				{"mercanciaTrincaContenedor", "Indicar si la mercancía se trinca al contenedor"},
				{"fechaProduccion", "Fecha de producción"},
				{"fechaCaducidad", "Fecha de caducidad"},
				{"lotes", "Lotes"},
				{"certificadosCalidad", "Certificados de Calidad/Espec. Técnicas"},
				{"tomaMuestras", "Toma de muestras"},
				{"pruebasLaboratorio", "Pruebas de laboratorio"},
				{"pesajeContenedor", "Pesaje de contenedor"},
				{"tiqueOficialPesaje", "Tique oficial de pesaje"},
				{"temperaturaAlmacenajePrevio", "Temperatura almacenaje previo carga"},
				{"temperaturaContenedor", "Temperatura de contenedor"},
				{"precintadoContenedor", "Precintado de contenedor"},
				{"precintadoGrupaje", "Precintado en grupaje (si es posible)"},
				{"precintoSeguridadBarra", `Precinto de seguridad "barra a barra"`},
				{"puedeEntregarInformeCampo", "Se puede entregar Informe de Campo"},
			},
			Get: func(w *WorkOrder) *Flags { return &w.AlcanceSupervision },
		},
	},
	TriGroups: []TriGroupField[WorkOrder]{
		{
			Key: "bultos",
			Items: []Option{
				{"aperturaBultos", "Apertura de bultos"},
				{"pesajeBultos", "Pesaje de bultos"},
			},
			Get: func(w *WorkOrder) *TriStates { return &w.Bultos },
		},
	},
}
