package telegram

const (
	BtnGenerateText  = "Сгенерировать \nтекст 📄"
	BtnGenerateImage = "Сгенерировать \nизображение 🖼"

	MsgGreeting = `Приветствую, мастер! 🎨
Добро пожаловать в мир бесконечных возможностей!
Я — твой ИИ-ассистент, готовый воплотить в жизнь любые текстовые и визуальные фантазии.
Просто отправь мне запрос, и я отвечу на него, сгенерирую для тебя уникальные тексты
или удивительные картинки. Давай начнем это увлекательное путешествие вместе!!`

	MsgEnterPrompt = "Введите ваш запрос"
	MsgEmptyPrompt = "Запрос не должен быть пустым."
	MsgProcessing  = "Операция в процессе. Пожалуйста, подождите..."
	MsgChooseType  = "Пожалуйста, выберите тип генерации контента,\n" +
		"нажав одну из кнопок: \n'Сгенерировать текст' или 'Сгенерировать изображение'"

	MsgWait      = "Запрос получен, дождитесь пожалуйста ответа...\n"
	MsgWaitText  = MsgWait + "Генерация ответа может занять до нескольких секунд."
	MsgWaitImage = MsgWait + "Генерация изображения может занять до 2-х минут, в зависимости от нагруженности сервера."

	MsgTextFailed     = "Не удалось получить ответ от GPT."
	MsgImageOverload  = "Ошибка: Сервер не смог обработать ваш запрос (возможно, из-за большой нагруженности).\nПопробуйте еще раз. Если ошибка будет повторяться, попробуйте позже или обратитесь к разработчику."
	MsgImageFailed    = "Ошибка: не удалось сгенерировать изображение. Попробуйте еще раз."
	MsgFloodWarning   = "Минимальный интервал между запросами ограничен, прошу немного подождать..."
	MsgInternalError  = "Произошла ошибка, попробуйте позже."
	MsgHistoryEmpty   = "Ваша история запросов пока пуста"
	MsgHistoryChoose  = "Выберите количество запросов или период, запросы за который вы хотите посмотреть:"
	MsgHighLowChoose  = "Выберите количество запросов с %s стоимостью, отчет по которым вы хотите получить:"
	MsgCustomCount    = "Введите количество запросов:"
	MsgInvalidCount   = "Количество запросов должно быть целым числом."
	MsgUnknownCommand = "Неизвестная команда. Список команд: /help"
)
